package helpers

import (
	"fmt"
	"strings"

	"github.com/loopers/commerce-api/pkg/mailer"
)

// NormalizeTemplate lower-cases the template name and falls back to the
// Data "Type" field when no template was set.
func NormalizeTemplate(job *mailer.EmailJob) {
	job.Template = strings.ToLower(strings.TrimSpace(job.Template))
	if job.Template != "" || job.Data == nil {
		return
	}
	if typ, ok := job.Data["Type"]; ok {
		job.Template = strings.ToLower(strings.TrimSpace(fmt.Sprintf("%v", typ)))
	}
}

func EnsureRecipientAndEmail(job *mailer.EmailJob) {
	if job.Data == nil {
		job.Data = map[string]any{}
	}
	if v, ok := job.Data["Email"]; !ok || fmt.Sprintf("%v", v) == "" {
		job.Data["Email"] = job.To
	}
	if v, ok := job.Data["RecipientEmail"]; !ok || fmt.Sprintf("%v", v) == "" {
		job.Data["RecipientEmail"] = job.To
	}
}
