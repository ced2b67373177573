package ttsmaker

import (
	"context"
	"net/url"
)

// Voice describes one synthetic voice offered by the service.
type Voice struct {
	ID                  int    `json:"id"`
	Name                string `json:"name"`
	Language            string `json:"language"`
	Gender              int    `json:"gender"`
	TextCharactersLimit int    `json:"text_characters_limit"`
	SampleURL           string `json:"audio_sample_file_url"`
	NeedQueue           bool   `json:"is_need_queue"`
}

// VoiceList is the catalog of voices the service offers, optionally filtered
// by language.
type VoiceList struct {
	Languages []string
	Voices    []Voice
}

type voiceListResponse struct {
	apiStatus
	SupportLanguageList []string `json:"support_language_list"`
	VoicesDetailedList  []Voice  `json:"voices_detailed_list"`
}

// GetVoiceList fetches the available voices. language narrows the catalog to
// one language code (e.g. "en", "zh"); the empty string fetches all voices.
func (c *Client) GetVoiceList(ctx context.Context, language string) (*VoiceList, error) {
	query := url.Values{"token": {c.token}}
	if language != "" {
		query.Set("language", language)
	}

	var r voiceListResponse
	if _, err := c.getJSON(ctx, "get-voice-list", query, &r); err != nil {
		return nil, err
	}

	return &VoiceList{
		Languages: r.SupportLanguageList,
		Voices:    r.VoicesDetailedList,
	}, nil
}
