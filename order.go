package ttsmaker

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/ekisa-team/ttsmaker/internal/mapsafe"
)

// downloadClient fetches remotely hosted audio. Orders hold no reference to
// the Client that created them, so the download path has its own HTTP client.
var downloadClient = &http.Client{Timeout: 60 * time.Second}

// Order is the result of one synthesis request. It holds the audio either
// inline or as a URL to fetch it from, and is never mutated after
// construction, so repeated saves produce identical files.
type Order struct {
	audio  []byte
	url    string
	format string
	raw    map[string]any
}

// Inline reports whether the audio bytes were returned with the order itself.
func (o *Order) Inline() bool { return len(o.audio) > 0 }

// Format returns the audio encoding identifier, e.g. "mp3".
func (o *Order) Format() string { return o.format }

// AudioFileURL returns the download URL for remotely hosted audio, or the
// empty string when the audio is inline.
func (o *Order) AudioFileURL() string { return o.url }

// Metadata returns a copy of the raw service metadata attached to the order.
func (o *Order) Metadata() map[string]any {
	if o.raw == nil {
		return nil
	}
	m := make(map[string]any, len(o.raw))
	for k, v := range o.raw {
		m[k] = v
	}
	return m
}

// OrderCharacters returns the number of characters the service billed for
// this order, when reported.
func (o *Order) OrderCharacters() int {
	return mapsafe.Get(o.raw, "tts_order_characters", 0)
}

// CreatedAt returns the service-side creation time of the order, when
// reported, and the zero time otherwise.
func (o *Order) CreatedAt() time.Time {
	ts := mapsafe.Get(o.raw, "unix_timestamp", int64(0))
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0)
}

// SaveAudio persists the order's audio to path. When path carries no
// extension, the order's format is appended as one. Remotely hosted audio is
// fetched with a single GET first. The bytes are written to a temporary file
// in the destination directory and renamed into place, so an interrupted
// write never leaves a truncated file at path.
func (o *Order) SaveAudio(ctx context.Context, path string) error {
	if len(o.audio) == 0 && o.url == "" {
		return &ValidationError{Field: "order", Reason: "order holds no audio data or download URL"}
	}

	dest := path
	if filepath.Ext(dest) == "" && o.format != "" {
		dest += "." + o.format
	}

	data := o.audio
	if !o.Inline() {
		fetched, err := o.download(ctx)
		if err != nil {
			return err
		}
		data = fetched
	}

	return writeFileAtomic(dest, data)
}

// download fetches the order's audio from its URL.
func (o *Order) download(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.url, nil)
	if err != nil {
		return nil, &TransportError{Op: "download audio", Err: err}
	}

	resp, err := downloadClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "download audio", Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: "download audio", Err: err}
	}

	if !isSuccess(resp.StatusCode) {
		return nil, &ServiceError{
			StatusCode: resp.StatusCode,
			Message:    o.url + ": " + trimBody(data),
		}
	}

	return data, nil
}

// writeFileAtomic writes data to dest via a temporary file and rename.
func writeFileAtomic(dest string, data []byte) error {
	dir := filepath.Dir(dest)
	f, err := os.CreateTemp(dir, "."+filepath.Base(dest)+".*")
	if err != nil {
		return &IOError{Path: dest, Err: err}
	}
	tmp := f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return &IOError{Path: dest, Err: err}
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return &IOError{Path: dest, Err: err}
	}

	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return &IOError{Path: dest, Err: err}
	}

	return nil
}
