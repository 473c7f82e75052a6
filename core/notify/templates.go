package notify

import (
	"fmt"
	"html"
	"strings"

	"github.com/DJCodeOne/freshwax-sub002/model"
)

func receivedTemplate(submissionID string) string {
	return fmt.Sprintf(`<html><body>
<h2>Submission received</h2>
<p>Submission <strong>%s</strong> has been received and is being processed.</p>
<p>You will get another email when processing completes.</p>
</body></html>`, html.EscapeString(submissionID))
}

func completeTemplate(release *model.ProcessedRelease) string {
	var rows strings.Builder
	for _, track := range release.Tracks {
		status := "ok"
		if track.Degraded() {
			status = "FAILED"
		}
		rows.WriteString(fmt.Sprintf("<tr><td>%02d</td><td>%s</td><td>%s</td></tr>\n",
			track.TrackNumber, html.EscapeString(track.Title), status))
	}

	return fmt.Sprintf(`<html><body>
<h2>Processing complete</h2>
<p><strong>%s - %s</strong> (release id <code>%s</code>) is processed and waiting for approval.</p>
<table border="1" cellpadding="4">
<tr><th>#</th><th>Title</th><th>Status</th></tr>
%s</table>
<p><img src="%s" width="200" alt="cover"/></p>
</body></html>`,
		html.EscapeString(release.Artist),
		html.EscapeString(release.Title),
		html.EscapeString(release.ID),
		rows.String(),
		html.EscapeString(release.CoverURL))
}

func failedTemplate(submissionID, errText string) string {
	return fmt.Sprintf(`<html><body>
<h2>Processing failed</h2>
<p>Submission <strong>%s</strong> could not be processed.</p>
<pre>%s</pre>
<p>The source files were left in place for inspection and retry.</p>
</body></html>`, html.EscapeString(submissionID), html.EscapeString(errText))
}
