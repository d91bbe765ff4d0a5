// Copyright 2026 The Cuebridge Authors
// SPDX-License-Identifier: Apache-2.0

package review

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// LoadBatch reads a comment batch from a YAML (.yaml, .yml) or JSONC
// (.json, .jsonc) file, picking the decoder by extension. Unknown
// fields are rejected so a typoed key fails loudly instead of
// silently dropping comments.
func LoadBatch(path string) (*Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("review: read batch: %w", err)
	}

	var batch *Batch
	switch extension := strings.ToLower(filepath.Ext(path)); extension {
	case ".yaml", ".yml":
		batch, err = parseYAML(data)
	case ".json", ".jsonc":
		batch, err = parseJSONC(data)
	default:
		return nil, fmt.Errorf("review: unsupported batch file extension %q (want .yaml, .yml, .json, or .jsonc)", extension)
	}
	if err != nil {
		return nil, fmt.Errorf("review: parse %s: %w", filepath.Base(path), err)
	}

	if err := batch.validate(); err != nil {
		return nil, fmt.Errorf("review: %s: %w", filepath.Base(path), err)
	}
	return batch, nil
}

func parseYAML(data []byte) (*Batch, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	var batch Batch
	if err := decoder.Decode(&batch); err != nil {
		return nil, err
	}
	return &batch, nil
}

// parseJSONC strips comments and trailing commas before decoding, so
// review tools can export annotated JSON.
func parseJSONC(data []byte) (*Batch, error) {
	decoder := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	decoder.DisallowUnknownFields()
	var batch Batch
	if err := decoder.Decode(&batch); err != nil {
		return nil, err
	}
	return &batch, nil
}

// validate rejects comments a sync could never dispatch. Timestamp
// format validity is checked later against the session's converter;
// here only structural problems are caught.
func (b *Batch) validate() error {
	for i, comment := range b.Comments {
		if comment.Timestamp == "" {
			return fmt.Errorf("comment %d (%q) has no timestamp", i+1, comment.markerName())
		}
		if strings.TrimSpace(comment.Text) == "" {
			return fmt.Errorf("comment %d at %s has no text", i+1, comment.Timestamp)
		}
	}
	return nil
}
