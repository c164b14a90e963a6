package ocr

import "testing"

func TestSniffImageMIME(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want string
	}{
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0}, "image/jpeg"},
		{"png", []byte("\x89PNG\r\n\x1a\nrest"), "image/png"},
		{"gif", []byte("GIF89a...."), "image/gif"},
		{"webp", []byte("RIFF\x00\x00\x00\x00WEBP"), "image/webp"},
		{"bmp", []byte("BM\x00\x00"), "image/bmp"},
		{"tiff le", []byte("II*\x00data"), "image/tiff"},
		{"text", []byte("hello world"), ""},
		{"empty", nil, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SniffImageMIME(tc.data); got != tc.want {
				t.Errorf("SniffImageMIME = %q, want %q", got, tc.want)
			}
		})
	}
}
