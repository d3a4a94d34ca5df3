package results

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// FixtureExt is the extension of fixture files.
const FixtureExt = ".yaml"

// fixture is the on-disk form of a Result.
type fixture struct {
	Name    string    `yaml:"name"`
	ImgName string    `yaml:"imgName"`
	RunID   string    `yaml:"runId,omitempty"`
	XLabel  string    `yaml:"xLabel,omitempty"`
	X       []float64 `yaml:"x,omitempty"`
	Series  []Series  `yaml:"series"`
}

// FixturePath is where the fixture of @r is saved under @dir.
func FixturePath(dir string, r *Result) string {
	return filepath.Join(dir, r.ImgName+FixtureExt)
}

// WriteFixture saves the values of @r, tagged with the run that produced them.
func WriteFixture(dir string, r *Result, runID string) (path string, err error) {
	if r.ImgName == "" {
		return "", errors.Errorf("result %q has no image name", r.Name)
	}
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "create fixtures dir %s", dir)
	}

	var data []byte
	if data, err = yaml.Marshal(&fixture{
		Name:    r.Name,
		ImgName: r.ImgName,
		RunID:   runID,
		XLabel:  r.XLabel,
		X:       r.X,
		Series:  r.series,
	}); err != nil {
		return "", errors.Wrapf(err, "marshal fixture %s", r.ImgName)
	}

	path = FixturePath(dir, r)
	if err = os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.Wrapf(err, "write fixture %s", path)
	}
	return path, nil
}

// ReadFixture loads a result saved by WriteFixture, along with its run id.
func ReadFixture(path string) (r *Result, runID string, err error) {
	var data []byte
	if data, err = os.ReadFile(path); err != nil {
		return nil, "", errors.Wrapf(err, "read fixture %s", path)
	}

	f := &fixture{}
	if err = yaml.Unmarshal(data, f); err != nil {
		return nil, "", errors.Wrapf(err, "parse fixture %s", path)
	}

	r = NewResult(f.Name, f.ImgName)
	if f.XLabel != "" {
		r.XLabel = f.XLabel
	}
	r.X = f.X
	for _, s := range f.Series {
		r.Set(s.Label, s.Values)
	}
	return r, f.RunID, nil
}

// ListFixtures returns the fixture image names found in @dir, sorted by file name.
// A missing directory is not an error.
func ListFixtures(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*"+FixtureExt))
	if err != nil {
		return nil, errors.Wrapf(err, "list fixtures in %s", dir)
	}

	names := make([]string, 0, len(matches))
	for _, m := range matches {
		base := filepath.Base(m)
		names = append(names, base[:len(base)-len(FixtureExt)])
	}
	return names, nil
}
