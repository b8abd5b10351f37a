package upload

// AssetResponse is returned after a successful upload.
type AssetResponse struct {
	URL     string `json:"url"`
	AssetID string `json:"asset_id"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Bytes   int    `json:"bytes"`
	Format  string `json:"format"`
}

func AssetResponseFromEntity(a *Asset) AssetResponse {
	return AssetResponse{
		URL:     a.URL,
		AssetID: a.ID,
		Width:   a.Width,
		Height:  a.Height,
		Bytes:   a.Bytes,
		Format:  a.Format,
	}
}
