package karotz

import (
	"context"
	"strings"
)

// ttsLanguages is the device's voice table. Each language owns two voice slots:
// male at index*2+1 and female at index*2+2.
var ttsLanguages = [...]string{
	"fr", "fr-CA", "en-US", "en-GB", "de", "it", "es", "nl", "af", "sq",
	"ar", "hy", "bs", "pt-BR", "hr", "cs", "da", "en-AU", "eo", "fi",
	"el", "ht", "hi", "hu", "is", "id", "ja", "ko", "la", "no",
	"pl", "pt-PT", "ro", "ru", "sr", "sh", "sk", "sw", "sv", "ta",
	"th", "tr", "vi", "cy",
}

// SupportedLanguages returns the language codes accepted by TTS, in voice table order.
func SupportedLanguages() []string {
	out := make([]string, len(ttsLanguages))
	copy(out, ttsLanguages[:])
	return out
}

// VoiceIndex returns the voice number for language and gender.
func VoiceIndex(language string, female bool) (int, error) {
	for i, lang := range ttsLanguages {
		if lang != language {
			continue
		}
		if female {
			return i*2 + 2, nil
		}
		return i*2 + 1, nil
	}
	return 0, invalidArgument("language not supported: %q", language)
}

// TTS speaks text with the voice for language and gender.
func (c *Client) TTS(ctx context.Context, female bool, language, text string) (bool, error) {
	res, err := c.Speak(ctx, female, language, text)
	if err != nil {
		return false, err
	}
	return res.Return.Value(), nil
}

// Speak is TTS returning the full device answer (played, cache hit, voice, id).
func (c *Client) Speak(ctx context.Context, female bool, language, text string) (*TTSResult, error) {
	voice, err := VoiceIndex(language, female)
	if err != nil {
		return nil, err
	}

	req := newRequest(cmdTTS).withInt("voice", voice).with("text", text)
	var res TTSResult
	ok, err := c.call(ctx, req, &res)
	if err != nil {
		return nil, err
	}
	c.log.DebugObj("karotz tts", "karotz_tts", map[string]any{
		"host":     c.host.String(),
		"ok":       ok,
		"played":   res.Played.Value(),
		"cache":    res.Cache.Value(),
		"language": res.VoiceLanguage,
		"gender":   res.VoiceGender,
		"id":       res.ID,
		"chars":    len(strings.TrimSpace(text)),
	})
	return &res, nil
}
