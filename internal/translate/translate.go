package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	defaultBaseURL     = "https://libretranslate.de/translate"
	defaultFallbackURL = "https://api.mymemory.translated.net/get"
)

// Languages maps supported target language codes to display names.
var Languages = map[string]string{
	"en": "English", "es": "Spanish", "fr": "French", "de": "German",
	"it": "Italian", "pt": "Portuguese", "ru": "Russian", "ja": "Japanese",
	"ko": "Korean", "zh": "Chinese", "ar": "Arabic", "hi": "Hindi",
	"th": "Thai", "vi": "Vietnamese", "tr": "Turkish", "pl": "Polish",
	"nl": "Dutch", "sv": "Swedish", "da": "Danish", "no": "Norwegian",
	"fi": "Finnish", "cs": "Czech", "ro": "Romanian", "hu": "Hungarian",
	"el": "Greek", "he": "Hebrew", "id": "Indonesian", "ms": "Malay",
	"uk": "Ukrainian", "bg": "Bulgarian", "hr": "Croatian", "sk": "Slovak",
	"sl": "Slovenian", "et": "Estonian", "lv": "Latvian", "lt": "Lithuanian",
}

// IsSupported reports whether code names a supported target language.
func IsSupported(code string) bool {
	_, ok := Languages[code]
	return ok
}

// Client translates composed responses through LibreTranslate, falling
// back to MyMemory when the primary service fails. Both failing is an
// error; the caller degrades to the untranslated text.
type Client struct {
	baseURL     string
	fallbackURL string
	httpClient  *http.Client
}

func NewClient(baseURL, fallbackURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if fallbackURL == "" {
		fallbackURL = defaultFallbackURL
	}
	return &Client{
		baseURL:     baseURL,
		fallbackURL: fallbackURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Translate converts text from English into targetLang. English targets
// and empty text pass through unchanged.
func (c *Client) Translate(ctx context.Context, text, targetLang string) (string, error) {
	if text == "" || targetLang == "" || targetLang == "en" {
		return text, nil
	}
	if !IsSupported(targetLang) {
		return "", fmt.Errorf("unsupported target language %q", targetLang)
	}

	translated, err := c.libreTranslate(ctx, text, targetLang)
	if err == nil {
		return translated, nil
	}
	log.Warn().Str("target", targetLang).Err(err).Msg("primary translation failed, trying fallback")

	translated, fbErr := c.myMemory(ctx, text, targetLang)
	if fbErr != nil {
		return "", fmt.Errorf("translation failed: %w (fallback: %v)", err, fbErr)
	}
	return translated, nil
}

func (c *Client) libreTranslate(ctx context.Context, text, targetLang string) (string, error) {
	form := url.Values{
		"q":      {text},
		"source": {"en"},
		"target": {targetLang},
		"format": {"text"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("libretranslate request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("libretranslate status %d", resp.StatusCode)
	}

	var decoded struct {
		TranslatedText string `json:"translatedText"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode libretranslate response: %w", err)
	}
	if decoded.TranslatedText == "" {
		return "", fmt.Errorf("libretranslate returned empty translation")
	}
	return decoded.TranslatedText, nil
}

func (c *Client) myMemory(ctx context.Context, text, targetLang string) (string, error) {
	params := url.Values{
		"q":        {text},
		"langpair": {"en|" + targetLang},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.fallbackURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("mymemory request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("mymemory status %d", resp.StatusCode)
	}

	var decoded struct {
		ResponseStatus int `json:"responseStatus"`
		ResponseData   struct {
			TranslatedText string `json:"translatedText"`
		} `json:"responseData"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode mymemory response: %w", err)
	}
	if decoded.ResponseStatus != http.StatusOK || decoded.ResponseData.TranslatedText == "" {
		return "", fmt.Errorf("mymemory returned status %d", decoded.ResponseStatus)
	}
	return decoded.ResponseData.TranslatedText, nil
}
