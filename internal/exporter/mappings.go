package exporter

import (
	"encoding/json"
	"os"

	apperrors "startupeda/internal/errors"
	"startupeda/pkg/contracts/domain"
)

// WriteMappings writes {"column": {"label": code}} to path, indented, with
// columns in encoding order and labels in first-appearance order.
func WriteMappings(path string, mappings domain.Mappings) error {
	if mappings == nil {
		mappings = domain.Mappings{}
	}
	data, err := json.MarshalIndent(mappings, "", "  ")
	if err != nil {
		return apperrors.NewStorageError("failed to encode mappings", err)
	}
	return writeFile(path, append(data, '\n'))
}

// WriteJSON writes v to path as indented JSON
func WriteJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return apperrors.NewStorageError("failed to encode JSON", err).WithContext("path", path)
	}
	return writeFile(path, append(data, '\n'))
}

func writeFile(path string, data []byte) error {
	if err := ensureParent(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return apperrors.NewStorageError("failed to write file", err).WithContext("path", path)
	}
	return nil
}
