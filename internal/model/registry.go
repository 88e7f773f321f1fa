package model

import "fmt"

// DefaultBaseURL is the model zoo location fetch manifests resolve against.
const DefaultBaseURL = "https://storage.openvinotoolkit.org/repositories/open_model_zoo/2022.1/models_bin/3"

// registryNames is the fixed list of models every full suite run covers.
var registryNames = []string{
	"age-gender-recognition-retail-0013",
	"face-person-detection-retail-0002",
	"head-pose-estimation-adas-0001",
	"person-detection-retail-0002",
	"vehicle-detection-adas-0002",
}

// Names returns the registry's model names in suite order.
func Names() []string {
	return append([]string(nil), registryNames...)
}

// Known reports whether name is in the registry.
func Known(name string) bool {
	for _, n := range registryNames {
		if n == name {
			return true
		}
	}

	return false
}

// Manifest pins the remote files one (model, precision) pair fetches.
type Manifest struct {
	Name      string
	Precision Precision
	Files     []File
}

// File is one remote artifact. SHA256 is empty for registry models: the
// checksum observed on first fetch is persisted into the local lock manifest
// and later fetches and verifies are held to it.
type File struct {
	Filename string
	URL      string
	SHA256   string
}

// FetchManifest builds the pinned manifest for a registry model. Unknown
// names fail: the registry is the only source of fetchable models.
func FetchManifest(name string, precision Precision, baseURL string) (Manifest, error) {
	if !Known(name) {
		return Manifest{}, fmt.Errorf("model: no fetch manifest for %q", name)
	}

	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	files := make([]File, 0, 2)
	for _, ext := range []string{DefaultTopologyExt, DefaultWeightsExt} {
		filename := name + ext
		files = append(files, File{
			Filename: filename,
			URL:      fmt.Sprintf("%s/%s/%s/%s", baseURL, name, precision, filename),
		})
	}

	return Manifest{Name: name, Precision: precision, Files: files}, nil
}
