//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const filterFile = "filter.yaml"

const exampleFilter = `# Landsat 8-9 Collection 2 Level-1, WRS-2 path 201 row 32, summer, clear skies.
dataset: landsat_ot_c2_l1
grid:
  type: WRS2
  path: 201
  row: 32
start: "2013-01-01"
end: "2020-12-31"
months: [5, 6, 7, 8, 9]
cloud_cover:
  min: 0
  max: 5
  include_unknown: false
`

// Search resolves filter.yaml to downloadable items and saves them to items.yaml.
func Search() error {
	mg.Deps(Build)
	return sh.RunV(binDir+"/"+binName, "search", "--filter", filterFile, "--save", "items.yaml")
}

// Download fetches the items saved by Search into downloads/.
func Download() error {
	mg.Deps(Build)
	return sh.RunV(binDir+"/"+binName, "download", "--items", "items.yaml",
		"--output-dir", "downloads", "--report", "reports/download.yaml")
}

// Fetch runs the whole pipeline for filter.yaml in one session.
func Fetch() error {
	mg.Deps(Build)
	return sh.RunV(binDir+"/"+binName, "fetch", "--filter", filterFile,
		"--output-dir", "downloads", "--report", "reports/download.yaml")
}
