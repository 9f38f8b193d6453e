package mail

import (
	"strings"
	"text/template"
	"time"
)

// MagicLinkParams is passed as data when executing the magic-link email
// template.
type MagicLinkParams struct {
	Email      string
	Link       string
	Expiration time.Duration
}

const MagicLinkSubject = "Your sign-in link"

var magicLinkTemplate = template.Must(template.New("magic_link").Parse(`Hi {{.Email}},

Click the link below to sign in:

<a href="{{.Link}}">{{.Link}}</a>

The link is valid for {{printf "%.f" .Expiration.Minutes}} minutes and can be used once.

If you did not request a sign-in link, you can ignore this email.
`))

func MagicLinkBody(params MagicLinkParams) (string, error) {
	var sb strings.Builder
	if err := magicLinkTemplate.Execute(&sb, params); err != nil {
		return "", err
	}

	return sb.String(), nil
}
