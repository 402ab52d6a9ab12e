package dtos

// PlaneSpottersResponse is the envelope returned by the public photo API
type PlaneSpottersResponse struct {
	Photos []PlaneSpottersPhoto `json:"photos"`
}

type PlaneSpottersPhoto struct {
	ID             string              `json:"id"`
	Thumbnail      *PlaneSpottersThumb `json:"thumbnail"`
	ThumbnailLarge *PlaneSpottersThumb `json:"thumbnail_large"`
	Link           string              `json:"link"`
	Photographer   string              `json:"photographer"`
}

type PlaneSpottersThumb struct {
	Src  string                 `json:"src"`
	Size map[string]interface{} `json:"size"`
}
