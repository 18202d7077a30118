package utils

import (
	"encoding/base64"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"
)

// SMTPConfig carries the SMTP_* settings. An incomplete config makes the
// mailer log instead of send.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	FromName string
}

func (c SMTPConfig) configured() bool {
	return c.Host != "" && c.Port != "" && c.Username != "" && c.Password != ""
}

type SMTPMailer struct {
	cfg  SMTPConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, send: smtp.SendMail}
}

// SendSigningRequest mails the tenant the link to the signing page.
func (m *SMTPMailer) SendSigningRequest(recipient, companyName, link string) error {
	if !m.cfg.configured() {
		zap.L().Info("[MOCK EMAIL] signing request", zap.String("to", recipient), zap.String("link", link))
		return nil
	}

	companyName = safeHeader(companyName)
	link = safeHeader(link)
	if !(strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://")) {
		link = "https://" + strings.TrimLeft(link, "/")
	}

	subject := fmt.Sprintf("[%s] 임대차 계약서 전자서명 요청", m.cfg.FromName)
	plain := fmt.Sprintf(
		"%s 담당자님,\n\n"+
			"임대차 계약서 전자서명을 요청드립니다.\n"+
			"아래 링크에서 계약 내용을 확인하신 후 서명해 주세요.\n%s\n\n"+
			"본인이 요청하지 않은 메일이라면 무시하셔도 됩니다.\n",
		companyName, link,
	)
	html := fmt.Sprintf(`<!doctype html>
<html>
<head><meta charset="utf-8"><title>전자서명 요청</title></head>
<body style="background:#f5f7fb;font-family:Arial, Helvetica, sans-serif;color:#222;">
<div style="max-width:640px;margin:20px auto;background:#fff;border:1px solid #e6eef6;padding:24px;border-radius:8px;">
  <h2>임대차 계약서 전자서명 요청</h2>
  <p>%s 담당자님,</p>
  <p>아래 버튼을 눌러 계약 내용을 확인하신 후 서명해 주세요.</p>
  <a href="%s" target="_blank" style="display:inline-block;padding:12px 20px;background:#0b74ff;color:#fff;text-decoration:none;border-radius:6px;">계약서 확인 및 서명</a>
</div>
</body>
</html>`, HTMLEscape(companyName), link)

	boundary := "----=_SIGNING_REQUEST_BOUNDARY"
	var sb strings.Builder
	m.writeHeaders(&sb, recipient, subject, "multipart/alternative", boundary)
	writePart(&sb, boundary, "text/plain; charset=utf-8", plain)
	writePart(&sb, boundary, "text/html; charset=utf-8", html)
	sb.WriteString(fmt.Sprintf("--%s--\r\n", boundary))

	return m.deliver(recipient, sb.String())
}

// SendSignedContract mails the completed contract document as an attachment.
func (m *SMTPMailer) SendSignedContract(recipient, companyName, fileName string, document []byte) error {
	if !m.cfg.configured() {
		zap.L().Info("[MOCK EMAIL] signed contract",
			zap.String("to", recipient), zap.String("file", fileName), zap.Int("bytes", len(document)))
		return nil
	}

	subject := fmt.Sprintf("[%s] 서명 완료된 임대차 계약서", m.cfg.FromName)
	plain := fmt.Sprintf(
		"%s 담당자님,\n\n양측 서명이 완료된 임대차 계약서를 첨부드립니다.\n",
		safeHeader(companyName),
	)

	boundary := "----=_SIGNED_CONTRACT_BOUNDARY"
	var sb strings.Builder
	m.writeHeaders(&sb, recipient, subject, "multipart/mixed", boundary)
	writePart(&sb, boundary, "text/plain; charset=utf-8", plain)

	sb.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	sb.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	sb.WriteString("Content-Transfer-Encoding: base64\r\n")
	sb.WriteString(fmt.Sprintf("Content-Disposition: attachment; filename=\"%s\"\r\n\r\n", safeHeader(fileName)))
	encoded := base64.StdEncoding.EncodeToString(document)
	for len(encoded) > 76 {
		sb.WriteString(encoded[:76] + "\r\n")
		encoded = encoded[76:]
	}
	sb.WriteString(encoded + "\r\n")
	sb.WriteString(fmt.Sprintf("--%s--\r\n", boundary))

	return m.deliver(recipient, sb.String())
}

func (m *SMTPMailer) writeHeaders(sb *strings.Builder, recipient, subject, contentType, boundary string) {
	sb.WriteString(fmt.Sprintf("From: %s <%s>\r\n", m.cfg.FromName, m.cfg.Username))
	sb.WriteString(fmt.Sprintf("To: %s\r\n", safeHeader(recipient)))
	sb.WriteString(fmt.Sprintf("Subject: =?UTF-8?B?%s?=\r\n", base64.StdEncoding.EncodeToString([]byte(subject))))
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString(fmt.Sprintf("Content-Type: %s; boundary=\"%s\"\r\n\r\n", contentType, boundary))
}

func writePart(sb *strings.Builder, boundary, contentType, body string) {
	sb.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	sb.WriteString(fmt.Sprintf("Content-Type: %s\r\n\r\n", contentType))
	sb.WriteString(body + "\r\n")
}

func (m *SMTPMailer) deliver(recipient, msg string) error {
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	addr := fmt.Sprintf("%s:%s", m.cfg.Host, m.cfg.Port)
	if err := m.send(addr, auth, m.cfg.Username, []string{recipient}, []byte(msg)); err != nil {
		zap.L().Error("failed to send email", zap.String("to", recipient), zap.Error(err))
		return err
	}
	zap.L().Info("email sent", zap.String("to", recipient))
	return nil
}

func safeHeader(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(strings.TrimSpace(s), "\r", ""), "\n", " ")
}

// HTMLEscape is a minimal escaper for short strings dropped into mail bodies.
func HTMLEscape(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#39;",
	)
	return replacer.Replace(s)
}
