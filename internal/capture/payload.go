package capture

import (
	"encoding/base64"
	"strings"

	"smartbill/internal/ocr"
)

// DecodePayload turns a capture payload into raw image bytes. Accepted
// forms, tried in order:
//   - a data URI ("data:image/jpeg;base64,..."), everything before the
//     first comma is discarded
//   - bare base64 text
//   - raw image bytes
//
// The decoded bytes must carry a recognizable image header.
func DecodePayload(payload []byte) ([]byte, error) {
	const op = "DecodePayload"

	if len(payload) == 0 {
		return nil, WrapExtractionError(op, ErrInvalidPayload, "empty payload")
	}

	// Raw image bytes pass through untouched.
	if ocr.SniffImageMIME(payload) != "" {
		return payload, nil
	}

	text := strings.TrimSpace(string(payload))
	if idx := strings.IndexByte(text, ','); idx >= 0 && strings.HasPrefix(text, "data:") {
		text = text[idx+1:]
	}

	decoded, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return nil, WrapExtractionError(op, ErrInvalidPayload, "payload is neither an image nor valid base64")
	}
	if ocr.SniffImageMIME(decoded) == "" {
		return nil, WrapExtractionError(op, ErrInvalidPayload, "decoded payload is not a recognized image format")
	}
	return decoded, nil
}
