package http

import (
	"bytes"
	"encoding/json"
)

// encodeJSON gives the compact encoding: no HTML escaping, no trailing newline.
func encodeJSON(v any) ([]byte, error) {
	buf := bytes.NewBuffer(nil)

	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}

	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}

func decodeJSON(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
