// Package media turns stored image references into URLs the browser can load.
package media

import (
	"net/url"
	"strings"
)

const cloudinaryBase = "https://res.cloudinary.com/"

type Resolver struct {
	cloudName string
}

// NewResolver serves images from Cloudinary when cloudName is set and from
// the local /media/ path otherwise.
func NewResolver(cloudName string) *Resolver {
	return &Resolver{cloudName: strings.TrimSpace(cloudName)}
}

func (r *Resolver) URL(image string) string {
	image = strings.TrimSpace(image)
	if image == "" {
		return ""
	}
	if u, err := url.Parse(image); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return image
	}
	image = strings.TrimLeft(image, "/")
	if r.cloudName == "" {
		return "/media/" + image
	}
	return cloudinaryBase + url.PathEscape(r.cloudName) + "/image/upload/" + image
}
