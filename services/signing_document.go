package services

import (
	"bytes"
	"html/template"
	"strings"
	"time"

	"oreoffice-backend/models"
)

var documentTemplate = template.Must(template.New("contract").Parse(`<!doctype html>
<html lang="ko">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  body { font-family: "Noto Sans KR", "Malgun Gothic", sans-serif; color: #222; max-width: 800px; margin: 32px auto; }
  .content { white-space: pre-wrap; line-height: 1.7; }
  .signatures { display: flex; gap: 48px; margin-top: 48px; }
  .signature { flex: 1; border-top: 1px solid #999; padding-top: 12px; }
  .signature img { max-height: 96px; }
  .meta { color: #777; font-size: 12px; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div class="content">{{.Content}}</div>
<div class="signatures">
  <div class="signature">
    <p>임차인 {{.CompanyName}} / {{.TenantSigner}}</p>
    {{if .TenantSignature}}<img src="{{.TenantSignature}}" alt="임차인 서명">{{end}}
    <p class="meta">{{.TenantSignedAt}} · IP {{.TenantIP}}</p>
  </div>
  <div class="signature">
    <p>임대인</p>
    {{if .AdminSignature}}<img src="{{.AdminSignature}}" alt="임대인 서명">{{end}}
    <p class="meta">{{.AdminSignedAt}}</p>
  </div>
</div>
<p class="meta">문서 번호 {{.DocumentNumber}} · 생성 {{.GeneratedAt}}</p>
</body>
</html>
`))

type documentData struct {
	Title           string
	Content         string
	CompanyName     string
	TenantSigner    string
	TenantSignature template.URL
	TenantSignedAt  string
	TenantIP        string
	AdminSignature  template.URL
	AdminSignedAt   string
	DocumentNumber  string
	GeneratedAt     string
}

// RenderDocument builds the signed contract as a standalone HTML page with
// both signature images embedded.
func RenderDocument(cs *models.ContractSigningSession, at time.Time) ([]byte, error) {
	data := documentData{
		Title:          "임대차 계약서",
		Content:        cs.RenderedContent,
		CompanyName:    companyOf(cs.Contract),
		TenantSigner:   cs.TenantSignerName,
		TenantIP:       cs.TenantIP,
		TenantSignedAt: stamp(cs.TenantSignedAt),
		AdminSignedAt:  stamp(cs.AdminSignedAt),
		DocumentNumber: cs.Token,
		GeneratedAt:    at.Format("2006-01-02 15:04:05 MST"),
	}
	// signatures are validated data:image URLs, safe to embed as-is
	if strings.HasPrefix(cs.TenantSignature, "data:image/") {
		data.TenantSignature = template.URL(cs.TenantSignature)
	}
	if strings.HasPrefix(cs.AdminSignature, "data:image/") {
		data.AdminSignature = template.URL(cs.AdminSignature)
	}

	var buf bytes.Buffer
	if err := documentTemplate.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func stamp(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format("2006-01-02 15:04:05 MST")
}
