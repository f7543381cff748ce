package telegram

import (
	"fmt"
	"strings"
	"time"

	"golang-news-insight/internal/pipeline/dto"
	"golang-news-insight/pkg/utils"
)

const maxMessageLen = 4090

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

// FormatBatchReport renders the outcome of an analysis batch.
func FormatBatchReport(result *dto.BatchResult, provider, model string, elapsed time.Duration) string {
	var sb strings.Builder

	icon := "✅"
	if result.Failed > 0 || result.Stopped != "" {
		icon = "⚠️"
	}
	sb.WriteString(fmt.Sprintf("%s *Analysis batch* (%s / %s)\n\n", icon, escape(provider), escape(model)))
	sb.WriteString(fmt.Sprintf("🧮 *Processed:* %d\n", result.Processed))
	sb.WriteString(fmt.Sprintf("❌ *Failed:* %d\n", result.Failed))
	sb.WriteString(fmt.Sprintf("⏱ *Duration:* %s\n", elapsed.Round(time.Millisecond)))

	if result.Stopped != "" {
		sb.WriteString(fmt.Sprintf("🛑 *Stopped early:* %s\n", escape(result.Stopped)))
	}
	if result.FirstError != "" {
		sb.WriteString(fmt.Sprintf("\n*First error:*\n`%s`\n", strings.ReplaceAll(utils.Truncate(result.FirstError, 500), "`", "'")))
	}

	return utils.Truncate(sb.String(), maxMessageLen)
}

// FormatIngestFailure renders a fatal ingest error.
func FormatIngestFailure(source string, err error) string {
	return utils.Truncate(fmt.Sprintf("🚨 *Ingest failed* (%s)\n\n`%s`",
		escape(source), strings.ReplaceAll(err.Error(), "`", "'")), maxMessageLen)
}

func escape(s string) string {
	return markdownEscaper.Replace(s)
}
