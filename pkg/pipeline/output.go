package pipeline

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	errs "github.com/matzehuels/umlsvg/pkg/errors"
	"github.com/matzehuels/umlsvg/pkg/render"
)

// Stdout is the output path that means standard output.
const Stdout = "-"

// OutputPaths decides where each format is written. The explicit path
// (the -o flag) wins over the document's outputPath; with neither, the
// single requested format goes to standard output. When several formats
// are requested the path is a base name and each artifact gets its own
// extension.
func OutputPaths(explicit, documentPath string, formats []render.Format) (map[render.Format]string, error) {
	target := explicit
	if target == "" {
		target = documentPath
	}

	paths := make(map[render.Format]string, len(formats))
	if target == "" || target == Stdout {
		if len(formats) > 1 {
			return nil, errs.New(errs.ErrCodeInvalidPath, "writing %d formats needs an output path", len(formats))
		}
		for _, f := range formats {
			paths[f] = Stdout
		}
		return paths, nil
	}

	if err := errs.ValidateOutputPath(target); err != nil {
		return nil, err
	}
	if len(formats) == 1 {
		paths[formats[0]] = target
		return paths, nil
	}

	base := stripFormatExt(target)
	for _, f := range formats {
		paths[f] = base + f.Extension()
	}
	return paths, nil
}

func stripFormatExt(path string) string {
	if strings.HasSuffix(path, render.FormatNodelink.Extension()) {
		return strings.TrimSuffix(path, render.FormatNodelink.Extension())
	}
	ext := filepath.Ext(path)
	if render.ValidFormats[render.Format(strings.TrimPrefix(strings.ToLower(ext), "."))] {
		return strings.TrimSuffix(path, ext)
	}
	return path
}

// WriteArtifacts writes each artifact to its path, creating parent
// directories. Artifacts bound for Stdout go to stdout. It returns the
// files written, in the order of formats.
func WriteArtifacts(stdout io.Writer, artifacts map[render.Format][]byte, paths map[render.Format]string, formats []render.Format) ([]string, error) {
	var written []string
	for _, f := range formats {
		data, ok := artifacts[f]
		if !ok {
			continue
		}
		path := paths[f]
		if path == Stdout || path == "" {
			if _, err := stdout.Write(data); err != nil {
				return written, errs.Wrap(errs.ErrCodeInternal, err, "write stdout")
			}
			continue
		}
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return written, errs.Wrap(errs.ErrCodeInvalidPath, err, "create %s", dir)
			}
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return written, errs.Wrap(errs.ErrCodeInvalidPath, err, "write %s", path)
		}
		written = append(written, path)
	}
	return written, nil
}
