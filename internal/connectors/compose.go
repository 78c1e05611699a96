package connectors

import (
	"bytes"
	_ "embed"
	"fmt"
	"html"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/jhillyerd/enmime"

	"outreach/internal"
	"outreach/internal/config"
	"outreach/internal/pipeline"
	"outreach/internal/util"
)

//go:embed template.txt
var defaultTemplate string

var urlRE = regexp.MustCompile(`https?://[^\s<>"]+`)

type Composer struct {
	template   string
	subject    string
	senderName string
	senderRole string
	from       string
	honorific  string
	normalizer *pipeline.Normalizer
	now        func() time.Time
}

// NewComposer reads the template from MAIL_TEMPLATE_PATH, falling back to
// the embedded one.
func NewComposer(cfg config.Config, normalizer *pipeline.Normalizer) (*Composer, error) {
	if err := cfg.Require("SENDER_ADDRESS", cfg.SenderAddress); err != nil {
		return nil, err
	}
	tmpl := defaultTemplate
	if strings.TrimSpace(cfg.MailTemplatePath) != "" {
		data, err := os.ReadFile(cfg.MailTemplatePath)
		if err != nil {
			return nil, fmt.Errorf("read mail template: %w", err)
		}
		tmpl = string(data)
	}
	if normalizer == nil {
		normalizer = pipeline.NewNormalizer(nil)
	}
	return &Composer{
		template:   tmpl,
		subject:    cfg.MailSubject,
		senderName: cfg.SenderName,
		senderRole: cfg.SenderRole,
		from:       cfg.SenderAddress,
		honorific:  cfg.DefaultHonorific,
		normalizer: normalizer,
		now:        time.Now,
	}, nil
}

// Render fills the template placeholders for one contact.
func (c *Composer) Render(contact internal.Contact) string {
	name := contact.Key.Name
	if name == pipeline.FallbackName {
		name = ""
	}
	r := strings.NewReplacer(
		"[Professor's Name]", c.normalizer.Salutation(name, c.honorific),
		"[Professor’s Name]", c.normalizer.Salutation(name, c.honorific),
		"[Your Name]", c.senderName,
		"[Position]", c.senderRole,
		"[COURSE_PHRASE]", CoursePhrase(contact.Courses),
	)
	return r.Replace(c.template)
}

// Compose builds a multipart/alternative message addressed to the contact.
func (c *Composer) Compose(contact internal.Contact) (internal.DraftMessage, error) {
	to := util.CleanEmail(contact.Key.Email)
	if !util.ValidEmail(to) {
		return internal.DraftMessage{}, fmt.Errorf("compose draft for %q: invalid address %q", contact.Key.Name, contact.Key.Email)
	}
	toName := contact.Key.Name
	if toName == pipeline.FallbackName {
		toName = ""
	}

	text := c.Render(contact)
	part, err := enmime.Builder().
		From(c.senderName, c.from).
		To(toName, to).
		Subject(c.subject).
		Date(c.now()).
		Text([]byte(text)).
		HTML([]byte(TextToHTML(text))).
		Build()
	if err != nil {
		return internal.DraftMessage{}, fmt.Errorf("compose draft for %s: %w", to, err)
	}

	var buf bytes.Buffer
	if err := part.Encode(&buf); err != nil {
		return internal.DraftMessage{}, fmt.Errorf("encode draft for %s: %w", to, err)
	}
	return internal.DraftMessage{To: to, ToName: toName, Subject: c.subject, Text: text, Raw: buf.Bytes()}, nil
}

// CoursePhrase renders the course list the way the greeting reads it:
// "your class", "your A class", "your A and B classes" or
// "your A, B, and C classes".
func CoursePhrase(courses []string) string {
	switch len(courses) {
	case 0:
		return "your class"
	case 1:
		return fmt.Sprintf("your %s class", courses[0])
	case 2:
		return fmt.Sprintf("your %s and %s classes", courses[0], courses[1])
	default:
		return fmt.Sprintf("your %s, and %s classes", strings.Join(courses[:len(courses)-1], ", "), courses[len(courses)-1])
	}
}

// TextToHTML escapes text, turns URLs into anchors and newlines into <br>.
func TextToHTML(text string) string {
	escaped := html.EscapeString(text)
	linked := urlRE.ReplaceAllStringFunc(escaped, func(u string) string {
		trimmed := strings.TrimRight(u, ".,;:!?)")
		rest := u[len(trimmed):]
		return `<a href="` + trimmed + `">` + trimmed + `</a>` + rest
	})
	return strings.ReplaceAll(strings.ReplaceAll(linked, "\r\n", "\n"), "\n", "<br>\n")
}
