package cli

import (
	"fmt"
	"io"
	"os"

	"FaceBlur/internal/api/detection"
	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

func validateFormat(format string) error {
	switch format {
	case formatJSON, formatYAML:
		return nil
	default:
		return fmt.Errorf("unsupported format %q, expected json or yaml", format)
	}
}

func writeFaceIndex(w io.Writer, format string, result detection.FaceIndexResponse) error {
	switch format {
	case formatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(result); err != nil {
			return err
		}
		return encoder.Close()
	case formatJSON:
		encoder := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	default:
		return validateFormat(format)
	}
}

var createOutput = func(path string) (io.WriteCloser, error) {
	return os.Create(path)
}

// writeOutput writes result to path, or to fallback when path is empty or "-".
func writeOutput(fallback io.Writer, path, format string, result detection.FaceIndexResponse) error {
	if path == "" || path == "-" {
		return writeFaceIndex(fallback, format, result)
	}

	f, err := createOutput(path)
	if err != nil {
		return err
	}

	if err := writeFaceIndex(f, format, result); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
