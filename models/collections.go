package models

// MongoDbCollection is the name of a MongoDB collection
type MongoDbCollection string

func (c MongoDbCollection) String() string {
	return string(c)
}
