package utils

import (
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedMail struct {
	addr string
	to   []string
	msg  string
}

func testMailer(cfg SMTPConfig, sent *[]capturedMail, fail error) *SMTPMailer {
	m := NewSMTPMailer(cfg)
	m.send = func(addr string, _ smtp.Auth, _ string, to []string, msg []byte) error {
		*sent = append(*sent, capturedMail{addr: addr, to: to, msg: string(msg)})
		return fail
	}
	return m
}

var smtpTestConfig = SMTPConfig{Host: "smtp.example.com", Port: "587", Username: "office@example.com", Password: "pw", FromName: "오레오피스"}

func TestSMTPMailer_UnconfiguredOnlyLogs(t *testing.T) {
	var sent []capturedMail
	m := testMailer(SMTPConfig{}, &sent, nil)
	require.NoError(t, m.SendSigningRequest("tenant@example.com", "오레상사", "https://office.example.com/contract-sign/abc"))
	require.NoError(t, m.SendSignedContract("tenant@example.com", "오레상사", "contract.html", []byte("<html></html>")))
	assert.Empty(t, sent)
}

func TestSMTPMailer_SigningRequest(t *testing.T) {
	var sent []capturedMail
	m := testMailer(smtpTestConfig, &sent, nil)
	require.NoError(t, m.SendSigningRequest("tenant@example.com", "<오레>\r\n상사", "office.example.com/contract-sign/abc"))

	require.Len(t, sent, 1)
	assert.Equal(t, "smtp.example.com:587", sent[0].addr)
	assert.Equal(t, []string{"tenant@example.com"}, sent[0].to)
	assert.Contains(t, sent[0].msg, "https://office.example.com/contract-sign/abc")
	assert.Contains(t, sent[0].msg, "&lt;오레&gt;")
	assert.Contains(t, sent[0].msg, "multipart/alternative")
}

func TestSMTPMailer_SignedContractAttachment(t *testing.T) {
	var sent []capturedMail
	m := testMailer(smtpTestConfig, &sent, errors.New("421 service not available"))
	err := m.SendSignedContract("tenant@example.com", "오레상사", "contract-1-2.html", []byte(strings.Repeat("x", 200)))
	assert.Error(t, err)

	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].msg, `filename="contract-1-2.html"`)
	for _, line := range strings.Split(sent[0].msg, "\r\n") {
		assert.LessOrEqual(t, len(line), 998)
	}
}
