package service

import (
	"net/url"
	"strings"

	"github.com/pribylovaa/go-maps-harvester/internal/models"
)

// socialDomains — сайты, которые не отправляются на обогащение:
// на них нет контактов самой организации.
var socialDomains = []string{
	"facebook.com",
	"instagram.com",
	"linkedin.com",
	"tiktok.com",
	"twitter.com",
	"x.com",
	"youtube.com",
}

// finalizeListings — нормализация карточек перед сохранением:
// trim ключевых полей, отбрасывание без ID/Name, дедупликация по ID
// (первое вхождение побеждает, порядок сохраняется).
func finalizeListings(in []models.Listing) []models.Listing {
	out := make([]models.Listing, 0, len(in))
	seen := make(map[string]struct{}, len(in))

	for _, it := range in {
		it.ID = strings.TrimSpace(it.ID)
		it.Name = strings.TrimSpace(it.Name)
		it.Website = strings.TrimSpace(it.Website)

		if it.ID == "" || it.Name == "" {
			continue
		}
		if _, dup := seen[it.ID]; dup {
			continue
		}

		seen[it.ID] = struct{}{}
		out = append(out, it)
	}

	return out
}

// websiteDomain возвращает хост сайта без "www."; "" если адрес не разобрать.
func websiteDomain(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}

	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}

func isSocialDomain(domain string) bool {
	for _, s := range socialDomains {
		if domain == s || strings.HasSuffix(domain, "."+s) {
			return true
		}
	}
	return false
}
