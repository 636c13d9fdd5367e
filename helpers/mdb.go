package helpers

import (
	"crypto/tls"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/Seklfreak/starlight/cache"
	"github.com/Seklfreak/starlight/models"
	"github.com/globalsign/mgo"
	"github.com/pkg/errors"
)

var (
	mDbSession  *mgo.Session
	mDbDatabase string
	mDbMutex    sync.RWMutex
)

// ConnectMDB connects to mongodb and stores the session
func ConnectMDB(url string, database string) error {
	log := cache.GetLogger().WithField("module", "mdb")
	log.Info("Connecting to " + url)

	mgo.SetDebug(false)

	newUrl := strings.TrimSuffix(url, "?ssl=true")
	newUrl = strings.Replace(newUrl, "ssl=true&", "", -1)

	dialInfo, err := mgo.ParseURL(newUrl)
	if err != nil {
		return errors.Wrap(err, "parsing mongodb url failed")
	}
	dialInfo.Timeout = 10 * time.Second

	// setup TLS if we use SSL
	if newUrl != url {
		tlsConfig := &tls.Config{}
		tlsConfig.InsecureSkipVerify = true

		dialInfo.DialServer = func(addr *mgo.ServerAddr) (net.Conn, error) {
			conn, err := tls.Dial("tcp", addr.String(), tlsConfig)
			return conn, err
		}
	}

	session, err := mgo.DialWithInfo(dialInfo)
	if err != nil {
		return errors.Wrap(err, "connecting to mongodb failed")
	}

	session.SetMode(mgo.Primary, false)
	session.SetSafe(&mgo.Safe{})

	mDbMutex.Lock()
	mDbSession = session
	mDbDatabase = database
	mDbMutex.Unlock()

	log.Info("Connected!")
	return nil
}

// HasMDb returns true if ConnectMDB succeeded
func HasMDb() bool {
	mDbMutex.RLock()
	defer mDbMutex.RUnlock()

	return mDbSession != nil
}

// GetMDb is a simple getter for the mongodb database.
func GetMDb() *mgo.Database {
	mDbMutex.RLock()
	defer mDbMutex.RUnlock()

	if mDbSession == nil {
		panic(errors.New("Tried to get mongodb before helpers#ConnectMDB() was called"))
	}

	return mDbSession.DB(mDbDatabase)
}

// CloseMDb closes the mongodb session
func CloseMDb() {
	mDbMutex.Lock()
	defer mDbMutex.Unlock()

	if mDbSession != nil {
		mDbSession.Close()
		mDbSession = nil
	}
}

func MdbCollection(collection models.MongoDbCollection) (query *mgo.Collection) {
	return GetMDb().C(collection.String())
}

func IsMdbNotFound(err error) (notFound bool) {
	if err != nil {
		if errors.Cause(err) == mgo.ErrNotFound ||
			strings.Contains(err.Error(), "not found") {
			return true
		}
	}
	return false
}
