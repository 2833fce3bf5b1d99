// Package registry discovers local model files that the generation pipeline can load.
package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"llmchat/internal/common/fsutil"
	"llmchat/pkg/types"
)

const modelExt = ".gguf"

// quantPattern matches llama.cpp quantization tags such as Q4_K_M, Q8_0 or F16.
var quantPattern = regexp.MustCompile(`(?i)(?:^|[.\-_])((?:IQ|Q)\d+(?:_[A-Z0-9]+)*|F16|F32|BF16)(?:$|[.\-_])`)

// LoadDir scans a directory for *.gguf files. ID is the full filename; Path is absolute.
// A missing directory yields an empty registry rather than an error.
func LoadDir(dir string) ([]types.Model, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var models []types.Model
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(strings.ToLower(name), modelExt) {
			continue
		}
		stem := name[:len(name)-len(modelExt)]
		models = append(models, types.Model{
			ID:    name,
			Name:  stem,
			Path:  filepath.Join(abs, name),
			Quant: quantOf(stem),
		})
	}
	sort.Slice(models, func(i, j int) bool { return models[i].ID < models[j].ID })
	return models, nil
}

func quantOf(stem string) string {
	m := quantPattern.FindStringSubmatch(stem)
	if m == nil {
		return ""
	}
	return strings.ToUpper(m[1])
}

// Resolve finds id in models, matching the exact ID, the ID without its extension
// (case-insensitive), or, failing that, treating id as a path to a model file.
func Resolve(models []types.Model, id string) (types.Model, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return types.Model{}, false
	}
	for _, m := range models {
		if m.ID == id {
			return m, true
		}
	}
	for _, m := range models {
		if strings.EqualFold(m.Name, id) || strings.EqualFold(m.ID, id+modelExt) {
			return m, true
		}
	}
	p, err := fsutil.ExpandHome(id)
	if err != nil || !fsutil.IsRegularFile(p) {
		return types.Model{}, false
	}
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	name := filepath.Base(p)
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	return types.Model{ID: name, Name: stem, Path: p, Quant: quantOf(stem)}, true
}
