// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the m2m-fetch pipeline:
// the filter a query runs with, the catalog records a session returns, and
// the stage configurations.
package types

// Credentials are exchanged once at login for a session token.
type Credentials struct {
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"-"`
}

// Empty reports whether either half of the credentials is missing.
func (c Credentials) Empty() bool {
	return c.Username == "" || c.Password == ""
}

// Coordinate is a WGS84 point.
type Coordinate struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
}

// Dataset is a catalog collection returned by dataset search.
type Dataset struct {
	// Alias is the dataset name scene search expects (e.g. "landsat_ot_c2_l1").
	Alias string `json:"datasetAlias" yaml:"alias"`

	// CollectionName is the human-readable collection title.
	CollectionName string `json:"collectionName" yaml:"collection_name"`

	// ID is the catalog's dataset identifier.
	ID string `json:"datasetId" yaml:"id"`
}

// Scene is one acquisition returned by scene search.
type Scene struct {
	EntityID  string `json:"entityId" yaml:"entity_id"`
	DisplayID string `json:"displayId" yaml:"display_id"`
}

// DownloadOption is one product offered for a scene.
type DownloadOption struct {
	// ID is the product id used when requesting the download.
	ID          string `json:"id" yaml:"id"`
	EntityID    string `json:"entityId" yaml:"entity_id"`
	DisplayID   string `json:"displayId" yaml:"display_id"`
	ProductName string `json:"productName" yaml:"product_name"`
	Available   bool   `json:"available" yaml:"available"`
	Filesize    int64  `json:"filesize" yaml:"filesize"`
}

// DownloadSelection names one product to request a URL for.
type DownloadSelection struct {
	EntityID  string `json:"entityId" yaml:"entity_id"`
	ProductID string `json:"productId" yaml:"product_id"`
}

// DownloadableItem is a resolved URL ready to fetch; it is the unit of work
// of the download stage.
type DownloadableItem struct {
	DownloadID string `json:"downloadId" yaml:"download_id"`
	URL        string `json:"url" yaml:"url"`
	EntityID   string `json:"entityId,omitempty" yaml:"entity_id,omitempty"`
	DisplayID  string `json:"displayId,omitempty" yaml:"display_id,omitempty"`
}
