// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package m2m

import (
	"encoding/json"
	"fmt"

	"github.com/pdiddy/m2m-fetch/pkg/types"
)

// Endpoint names, appended to the API root.
const (
	endpointLogin           = "login"
	endpointLogout          = "logout"
	endpointDatasetSearch   = "dataset-search"
	endpointGrid2LL         = "grid2ll"
	endpointSceneSearch     = "scene-search"
	endpointDownloadOptions = "download-options"
	endpointDownloadRequest = "download-request"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type datasetSearchRequest struct {
	DatasetName string `json:"datasetName"`
}

type gridRequest struct {
	GridType      string `json:"gridType"`
	ResponseShape string `json:"responseShape"`
	Path          string `json:"path"`
	Row           string `json:"row"`
}

type gridResponse struct {
	Shape       string             `json:"shape"`
	Coordinates []types.Coordinate `json:"coordinates"`
}

// SceneSearch is a scene-search request for the scenes covering one point.
type SceneSearch struct {
	Dataset    string
	Point      types.Coordinate
	Start      string
	End        string
	Months     []int
	CloudCover types.CloudCover

	// PageSize is the maxResults sent per page; zero lets the service pick.
	PageSize int

	// StartingNumber is the 1-based index of the first record; zero means 1.
	StartingNumber int
}

type sceneSearchRequest struct {
	DatasetName    string      `json:"datasetName"`
	MaxResults     int         `json:"maxResults,omitempty"`
	StartingNumber int         `json:"startingNumber"`
	SceneFilter    sceneFilter `json:"sceneFilter"`
}

type sceneFilter struct {
	SpatialFilter     spatialFilter     `json:"spatialFilter"`
	AcquisitionFilter acquisitionFilter `json:"acquisitionFilter"`
	CloudCoverFilter  types.CloudCover  `json:"cloudCoverFilter"`
	SeasonalFilter    []int             `json:"seasonalFilter,omitempty"`
}

type spatialFilter struct {
	FilterType string           `json:"filterType"`
	LowerLeft  types.Coordinate `json:"lowerLeft"`
	UpperRight types.Coordinate `json:"upperRight"`
}

type acquisitionFilter struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// body builds the wire request. The bounding box is degenerate: both
// corners are the search point.
func (s SceneSearch) body() sceneSearchRequest {
	start := s.StartingNumber
	if start <= 0 {
		start = 1
	}
	return sceneSearchRequest{
		DatasetName:    s.Dataset,
		MaxResults:     s.PageSize,
		StartingNumber: start,
		SceneFilter: sceneFilter{
			SpatialFilter: spatialFilter{
				FilterType: "mbr",
				LowerLeft:  s.Point,
				UpperRight: s.Point,
			},
			AcquisitionFilter: acquisitionFilter{Start: s.Start, End: s.End},
			CloudCoverFilter:  s.CloudCover,
			SeasonalFilter:    s.Months,
		},
	}
}

// ScenePage is one page of scene-search results.
type ScenePage struct {
	Scenes          []types.Scene `json:"results"`
	RecordsReturned int           `json:"recordsReturned"`
	TotalHits       int           `json:"totalHits"`
	StartingNumber  int           `json:"startingNumber"`

	// NextRecord is the startingNumber of the following page. The service
	// reports zero, or a value past TotalHits, on the last page.
	NextRecord int `json:"nextRecord"`
}

// nextStart returns the startingNumber to request after p. start is the
// startingNumber p was requested with and consumed counts every record read
// so far, this page included. Some services report nextRecord equal to
// totalHits on the last page, or never advance the cursor, so progress is
// judged against the request rather than the page's own startingNumber.
func (p ScenePage) nextStart(start, consumed int) (int, bool) {
	if len(p.Scenes) == 0 || p.NextRecord <= start {
		return 0, false
	}
	if p.TotalHits > 0 && consumed >= p.TotalHits {
		return 0, false
	}
	return p.NextRecord, true
}

type downloadOptionsRequest struct {
	DatasetName string   `json:"datasetName"`
	EntityIDs   []string `json:"entityIds"`
}

type downloadRequest struct {
	Downloads []types.DownloadSelection `json:"downloads"`
	Label     string                    `json:"label,omitempty"`
}

type downloadRequestResponse struct {
	AvailableDownloads []availableDownload `json:"availableDownloads"`
	PreparingDownloads []availableDownload `json:"preparingDownloads"`
	Failed             []json.RawMessage   `json:"failed"`
}

type availableDownload struct {
	DownloadID flexID `json:"downloadId"`
	URL        string `json:"url"`
	EntityID   string `json:"entityId"`
	DisplayID  string `json:"displayId"`
}

// flexID decodes an identifier the service sends as a number or a string.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("identifier %s: %w", b, err)
	}
	*f = flexID(n.String())
	return nil
}

// DownloadRequestResult is the outcome of a download-request call.
type DownloadRequestResult struct {
	// Available lists the items whose URLs are ready now.
	Available []types.DownloadableItem

	// Preparing counts products the service is still staging.
	Preparing int

	// Failed counts products the service rejected.
	Failed int
}
