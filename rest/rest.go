package rest

import (
	"net/http"
	"time"

	"github.com/Seklfreak/starlight/models"
	"github.com/Seklfreak/starlight/modules/plugins/boards"
	"github.com/emicklei/go-restful/v3"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Service exposes the boards of the guilds read-only
type Service struct {
	settings *boards.Settings
	log      *logrus.Entry
}

func NewService(settings *boards.Settings, log *logrus.Entry) *Service {
	return &Service{settings: settings, log: log}
}

func (s *Service) WebServices() []*restful.WebService {
	services := make([]*restful.WebService, 0)

	service := new(restful.WebService)
	service.
		Path("/boards").
		Produces(restful.MIME_JSON)

	service.Route(service.GET("/{guild-id}").To(s.GetBoards))
	service.Route(service.GET("/{guild-id}/{kind}/top").To(s.GetTop))
	services = append(services, service)

	return services
}

// Container returns the REST API with request logging
func (s *Service) Container() *restful.Container {
	wsContainer := restful.NewContainer()
	for _, service := range s.WebServices() {
		wsContainer.Add(service)
	}
	wsContainer.Filter(func(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
		now := time.Now()
		chain.ProcessFilter(req, resp)
		s.log.WithFields(logrus.Fields{
			"method": req.Request.Method,
			"url":    req.Request.URL.String(),
			"status": resp.StatusCode(),
			"took":   time.Since(now),
		}).Debug("received api request")
	})
	return wsContainer
}

func (s *Service) GetBoards(request *restful.Request, response *restful.Response) {
	guildID := request.PathParameter("guild-id")

	configs, err := s.settings.Store().Boards(guildID)
	if err != nil {
		s.log.WithField("guild", guildID).WithError(err).Error("reading boards failed")
		response.WriteError(http.StatusInternalServerError, errors.New("Reading boards failed."))
		return
	}
	if configs == nil {
		configs = make([]models.BoardConfig, 0)
	}

	response.WriteEntity(configs)
}

func (s *Service) GetTop(request *restful.Request, response *restful.Response) {
	guildID := request.PathParameter("guild-id")
	kind := models.BoardKind(request.PathParameter("kind"))

	records, err := s.settings.Top(guildID, kind, boards.TopLimit)
	switch {
	case err == nil:
	case errors.Is(err, boards.ErrInvalidKind):
		response.WriteError(http.StatusBadRequest, errors.New("Unknown board kind."))
		return
	case errors.Is(err, boards.ErrNoBoard):
		response.WriteError(http.StatusNotFound, errors.New("Board not found."))
		return
	default:
		s.log.WithField("guild", guildID).WithError(err).Error("reading top mirrors failed")
		response.WriteError(http.StatusInternalServerError, errors.New("Reading top mirrors failed."))
		return
	}
	if records == nil {
		records = make([]models.MirrorRecord, 0)
	}

	response.WriteEntity(records)
}
