package ganttdata

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"oss.terrastruct.com/xdefer"
)

func ParseJSON(b []byte) (_ *Options, err error) {
	defer xdefer.Errorf(&err, "failed to parse chart JSON")

	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	opts := &Options{}
	if err := dec.Decode(opts); err != nil {
		return nil, err
	}
	opts.ApplyDefaults()
	return opts, nil
}

func ParseYAML(b []byte) (_ *Options, err error) {
	defer xdefer.Errorf(&err, "failed to parse chart YAML")

	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	opts := &Options{}
	if err := dec.Decode(opts); err != nil {
		return nil, err
	}
	opts.ApplyDefaults()
	return opts, nil
}

// Parse picks the decoder from the extension of path. Anything but .yaml/.yml is JSON.
func Parse(path string, b []byte) (*Options, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(b)
	default:
		return ParseJSON(b)
	}
}
