package extract

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"net/textproto"
	"strings"
)

// MessageText returns the text/plain content of a parsed message. Nested
// multiparts are walked depth first; when no text part exists the raw body
// is returned.
func MessageText(msg *mail.Message) (string, error) {
	body, err := io.ReadAll(msg.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read message body: %w", err)
	}

	header := textproto.MIMEHeader(msg.Header)
	text, found := partText(header, body)
	if found {
		return text, nil
	}
	return decodeBytes(body), nil
}

// partText extracts text/plain content from a single entity
func partText(header textproto.MIMEHeader, body []byte) (string, bool) {
	mediaType, params, err := mime.ParseMediaType(header.Get("Content-Type"))
	if err != nil {
		// RFC 2045 default
		mediaType = "text/plain"
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		boundary := params["boundary"]
		if boundary == "" {
			return "", false
		}
		return multipartText(body, boundary)
	}

	if mediaType != "text/plain" {
		return "", false
	}

	decoded, err := decodeTransfer(header.Get("Content-Transfer-Encoding"), body)
	if err != nil {
		decoded = body
	}
	return decodeBytes(decoded), true
}

func multipartText(body []byte, boundary string) (string, bool) {
	mr := multipart.NewReader(bytes.NewReader(body), boundary)

	var texts []string
	for {
		part, err := mr.NextPart()
		if err != nil {
			// io.EOF or a truncated body; keep what was read so far
			break
		}

		partBody, err := io.ReadAll(part)
		if err != nil {
			continue
		}

		// NextPart decodes quoted-printable itself and drops the header
		if text, ok := partText(part.Header, partBody); ok {
			texts = append(texts, strings.TrimRight(text, "\r\n"))
		}
	}

	if len(texts) == 0 {
		return "", false
	}
	return strings.Join(texts, "\n"), true
}

func decodeTransfer(encoding string, body []byte) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "base64":
		return io.ReadAll(base64.NewDecoder(base64.StdEncoding, bytes.NewReader(body)))
	case "quoted-printable":
		return io.ReadAll(quotedprintable.NewReader(bytes.NewReader(body)))
	default:
		return body, nil
	}
}
