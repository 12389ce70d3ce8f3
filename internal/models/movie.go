package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Movie is a catalog entry stored in MongoDB (imported from TMDB elsewhere)
type Movie struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	TMDBID     int                `json:"tmdb_id" bson:"tmdb_id"`
	Title      string             `json:"title" bson:"title"`
	Year       int                `json:"year,omitempty" bson:"year,omitempty"`
	PosterPath string             `json:"poster_path,omitempty" bson:"poster_path,omitempty"`
}

// MovieRef is the reference to a movie carried by activity records
type MovieRef struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	PosterPath string `json:"poster_path,omitempty"`
}
