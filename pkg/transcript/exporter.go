// Package transcript renders the message history of a ticket channel
// into a self-contained HTML document.
package transcript

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// pageSize is the largest page the Discord message history API serves.
const pageSize = 100

// HistoryReader is the slice of the Discord session the exporter needs.
// *discordgo.Session satisfies it.
type HistoryReader interface {
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error)
}

// Exporter renders ticket transcripts. Message content is treated as
// markdown and sanitised, so hostile content cannot script the
// exported page.
type Exporter struct {
	// l is the logger.
	l *slog.Logger

	reader HistoryReader

	md     goldmark.Markdown
	policy *bluemonday.Policy
	tmpl   *template.Template

	now func() time.Time
}

// NewExporter creates a new transcript exporter.
func NewExporter(logger *slog.Logger, reader HistoryReader) *Exporter {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.Strikethrough,
			extension.Linkify,
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			// Raw HTML must survive rendering so the bluemonday pass
			// sees it; dropping it here also drops adjacent text.
			html.WithUnsafe(),
		),
	)

	return &Exporter{
		l:      logger,
		reader: reader,
		md:     md,
		policy: bluemonday.UGCPolicy(),
		tmpl:   template.Must(template.New("transcript").Parse(transcriptTemplate)),
		now:    time.Now,
	}
}

type transcriptData struct {
	ChannelName string
	GeneratedAt string
	Messages    []transcriptMessage
}

type transcriptMessage struct {
	Author      string
	AuthorID    string
	Timestamp   string
	Content     template.HTML
	Attachments []transcriptAttachment
	Embeds      []transcriptEmbed
}

type transcriptAttachment struct {
	Filename string
	URL      string
}

type transcriptEmbed struct {
	Title       string
	Description template.HTML
}

// Export renders the channel's full history, oldest message first.
func (e *Exporter) Export(channelID string) ([]byte, error) {
	channel, err := e.reader.Channel(channelID)
	if err != nil {
		return nil, fmt.Errorf("error getting channel: %w", err)
	}

	history, err := e.fetchHistory(channelID)
	if err != nil {
		return nil, err
	}

	data := transcriptData{
		ChannelName: channel.Name,
		GeneratedAt: e.now().UTC().Format(time.RFC1123),
	}
	for _, msg := range history {
		data.Messages = append(data.Messages, e.renderMessage(msg))
	}

	var buf bytes.Buffer
	if err := e.tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("error rendering transcript: %w", err)
	}
	return buf.Bytes(), nil
}

// fetchHistory pages backwards through the channel and returns the
// messages oldest first.
func (e *Exporter) fetchHistory(channelID string) ([]*discordgo.Message, error) {
	var pages []*discordgo.Message

	beforeID := ""
	for {
		page, err := e.reader.ChannelMessages(channelID, pageSize, beforeID, "", "")
		if err != nil {
			return nil, fmt.Errorf("error getting messages: %w", err)
		}
		if len(page) == 0 {
			break
		}

		// Pages arrive newest first.
		pages = append(pages, page...)
		beforeID = page[len(page)-1].ID

		if len(page) < pageSize {
			break
		}
	}

	// Flip to oldest first.
	for i, j := 0, len(pages)-1; i < j; i, j = i+1, j-1 {
		pages[i], pages[j] = pages[j], pages[i]
	}
	return pages, nil
}

func (e *Exporter) renderMessage(msg *discordgo.Message) transcriptMessage {
	out := transcriptMessage{
		Timestamp: msg.Timestamp.UTC().Format("2006-01-02 15:04:05"),
		Content:   e.renderMarkdown(msg.Content),
	}

	if msg.Author != nil {
		out.Author = msg.Author.Username
		out.AuthorID = msg.Author.ID
	}

	for _, att := range msg.Attachments {
		out.Attachments = append(out.Attachments, transcriptAttachment{
			Filename: att.Filename,
			URL:      att.URL,
		})
	}

	for _, embed := range msg.Embeds {
		out.Embeds = append(out.Embeds, transcriptEmbed{
			Title:       embed.Title,
			Description: e.renderMarkdown(embed.Description),
		})
	}

	return out
}

func (e *Exporter) renderMarkdown(content string) template.HTML {
	var buf bytes.Buffer
	if err := e.md.Convert([]byte(content), &buf); err != nil {
		e.l.Warn("Error converting message markdown", slog.String("err", err.Error()))
		// Fall back to the sanitised raw content.
		return template.HTML(e.policy.Sanitize(content))
	}
	return template.HTML(e.policy.Sanitize(buf.String()))
}

const transcriptTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Transcript of #{{.ChannelName}}</title>
<style>
body { font-family: sans-serif; background: #313338; color: #dbdee1; margin: 0; padding: 2rem; }
h1 { color: #f2f3f5; }
.meta { color: #949ba4; margin-bottom: 2rem; }
.message { padding: 0.5rem 0; border-bottom: 1px solid #3f4147; }
.author { font-weight: bold; color: #f2f3f5; }
.timestamp { color: #949ba4; font-size: 0.8rem; margin-left: 0.5rem; }
.content p { margin: 0.25rem 0; }
.embed { border-left: 4px solid #5865f2; padding: 0.5rem; margin: 0.25rem 0; background: #2b2d31; }
.embed-title { font-weight: bold; }
.attachment a { color: #00a8fc; }
</style>
</head>
<body>
<h1>#{{.ChannelName}}</h1>
<div class="meta">{{len .Messages}} messages &middot; exported {{.GeneratedAt}}</div>
{{range .Messages}}<div class="message">
<span class="author">{{.Author}}</span><span class="timestamp">{{.Timestamp}}</span>
<div class="content">{{.Content}}</div>
{{range .Embeds}}<div class="embed">{{if .Title}}<div class="embed-title">{{.Title}}</div>{{end}}{{.Description}}</div>
{{end}}{{range .Attachments}}<div class="attachment"><a href="{{.URL}}">{{.Filename}}</a></div>
{{end}}</div>
{{end}}</body>
</html>
`
