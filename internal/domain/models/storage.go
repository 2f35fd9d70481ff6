package models

import (
	"io"
	"time"
)

type Upload struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.ReadSeeker
}

type StoredObject struct {
	Key          string    `json:"key"`
	URL          string    `json:"url,omitempty"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"contentType"`
	LastModified time.Time `json:"lastModified,omitzero"`
}
