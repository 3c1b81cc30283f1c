package enrollment

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrymomot/twofa/pkg/totp"
)

// RenderBackupDocument produces the plain-text backup document for a secret
// using the RFC 6238 standard code parameters. It is a pure function of its
// inputs; delivering the result as a downloadable attachment is the caller's
// job. Service.BackupDocument is the store-aware variant honoring the
// configured digits and period.
func RenderBackupDocument(siteName, scope, secret string, generatedAt time.Time) (string, error) {
	code, err := totp.CodeAt(secret, generatedAt, totp.DefaultDigits, totp.DefaultPeriod)
	if err != nil {
		return "", err
	}
	return renderBackupDocument(siteName, scope, code, totp.DefaultPeriod, generatedAt), nil
}

func renderBackupDocument(siteName, scope, code string, period int, generatedAt time.Time) string {
	var b strings.Builder

	title := fmt.Sprintf("%s - two-factor authentication backup", siteName)
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", len([]rune(title))) + "\n\n")

	fmt.Fprintf(&b, "Account scope:  %s\n", scope)
	fmt.Fprintf(&b, "Generated at:   %s\n\n", generatedAt.UTC().Format("2006-01-02 15:04:05 UTC"))

	fmt.Fprintf(&b, "One-time code:  %s\n\n", code)

	fmt.Fprintf(&b, "This code was valid for roughly %d seconds after the generation time\n", period)
	b.WriteString("above. It is a snapshot, not a reusable password.\n\n")
	b.WriteString("If you lose access to your authenticator device, contact support and\n")
	b.WriteString("reference this document to prove when you last completed 2FA setup.\n")
	b.WriteString("Store it offline and treat it like any other credential.\n")

	return b.String()
}
