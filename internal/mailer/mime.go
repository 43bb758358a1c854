package mailer

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"mime"
	"mime/multipart"
	"net/textproto"
	"strings"
	"time"
)

func formatAddress(name, addr string) string {
	// RFC2047: encode non-ascii display names
	if name == "" {
		return addr
	}
	encoded := mime.QEncoding.Encode("utf-8", name)
	return fmt.Sprintf("%s <%s>", encoded, addr)
}

func newMessageID(domain string) string {
	b := make([]byte, 12)
	_, _ = rand.Read(b)
	return fmt.Sprintf("<%s@%s>", hex.EncodeToString(b), domain)
}

// buildMIMEMessage renders the full RFC5322 message. Both bodies present means
// multipart/alternative with text first, so clients that cannot render the
// inline QR image still show the voucher code.
func buildMIMEMessage(e Email, messageIDDomain string) (string, error) {
	if len(e.To) == 0 {
		return "", fmt.Errorf("mailer: at least one recipient required")
	}
	if e.From == "" {
		return "", fmt.Errorf("mailer: from address required")
	}
	if e.Subject == "" {
		return "", fmt.Errorf("mailer: subject required")
	}
	if e.TextBody == "" && e.HTMLBody == "" {
		return "", fmt.Errorf("mailer: textBody or htmlBody required")
	}

	var b strings.Builder

	writeHeader(&b, "Date", time.Now().Format(time.RFC1123Z))
	writeHeader(&b, "Message-ID", newMessageID(messageIDDomain))
	writeHeader(&b, "From", formatAddress(e.FromName, e.From))
	writeHeader(&b, "To", strings.Join(e.To, ", "))
	if len(e.Cc) > 0 {
		writeHeader(&b, "Cc", strings.Join(e.Cc, ", "))
	}
	writeHeader(&b, "Subject", mime.QEncoding.Encode("utf-8", e.Subject))
	writeHeader(&b, "MIME-Version", "1.0")

	for k, v := range e.Headers {
		if k == "" || v == "" {
			continue
		}
		writeHeader(&b, k, v)
	}

	if e.TextBody != "" && e.HTMLBody != "" {
		mw := multipart.NewWriter(&b)
		writeHeader(&b, "Content-Type", `multipart/alternative; boundary="`+mw.Boundary()+`"`)
		b.WriteString("\r\n")

		if err := writePart(mw, "text/plain", e.TextBody); err != nil {
			return "", err
		}
		if err := writePart(mw, "text/html", e.HTMLBody); err != nil {
			return "", err
		}
		if err := mw.Close(); err != nil {
			return "", err
		}
		return b.String(), nil
	}

	contentType := "text/plain"
	body := e.TextBody
	if e.HTMLBody != "" {
		contentType = "text/html"
		body = e.HTMLBody
	}

	writeHeader(&b, "Content-Type", contentType+"; charset=UTF-8")
	writeHeader(&b, "Content-Transfer-Encoding", "7bit")
	b.WriteString("\r\n")
	b.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		b.WriteString("\r\n")
	}
	return b.String(), nil
}

func writeHeader(b *strings.Builder, key, value string) {
	b.WriteString(key)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteString("\r\n")
}

func writePart(mw *multipart.Writer, contentType, body string) error {
	h := textproto.MIMEHeader{}
	h.Set("Content-Type", contentType+"; charset=UTF-8")
	h.Set("Content-Transfer-Encoding", "7bit")

	w, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte(body)); err != nil {
		return err
	}
	if !strings.HasSuffix(body, "\n") {
		if _, err := w.Write([]byte("\r\n")); err != nil {
			return err
		}
	}
	return nil
}
