package core

import (
	"bytes"
	"fmt"
	htmltmpl "html/template"
	"net/mail"
	"path/filepath"
	"strings"
	"sync"
	texttmpl "text/template"
)

var (
	templates    tmplCache
	tmplInit     sync.Once
	tmplConf     *Config
	tmplConfOnce sync.Once
)

type (
	tmplCacheEntry map[string]interface{}    // {ext: *Template}
	tmplCache      map[string]tmplCacheEntry // {name: {tmplCacheEntry}}

	// Notification is a user-visible notice (reschedule failures,
	// schedule-change confirmations) delivered out-of-band.
	Notification struct {
		To      []mail.Address
		Cc      []mail.Address
		Subject string
		BodyStr string // simple text/plain, non-templated content

		// templated contents
		TemplateName string // without ext
		TemplateData interface{}
		TextContent  string
		HTMLContent  string
	}

	ContextData struct {
		FrontendBaseURL string
		Data            interface{}
	}

	// Notifier is any service that can deliver notifications
	Notifier interface {
		// Send delivers notifications concurrently
		Send(notifications ...*Notification)
	}
)

// InitNotifyTemplates makes the notification template set available for rendering.
// Must be called once at startup before any Notification is sent.
func InitNotifyTemplates(conf *Config, logger Logger) {
	tmplConfOnce.Do(func() { tmplConf = conf })
	tmplInit.Do(func() { parseTemplates(conf, logger) })
}

func (n *Notification) getContextData() ContextData {
	data := ContextData{Data: n.TemplateData}
	if tmplConf != nil {
		data.FrontendBaseURL = tmplConf.FrontendBaseURL
	}
	return data
}

func (n *Notification) getTemplate(ext string) (interface{}, bool) {
	cache, ok := templates[n.TemplateName]
	if !ok {
		return nil, ok
	}
	tmplEntry, ok := cache[ext]
	return tmplEntry, ok
}

func (n *Notification) renderText() error {
	if n.BodyStr != "" {
		n.TextContent = n.BodyStr
		return nil
	} else if n.TemplateName == "" {
		return nil
	}

	tmplEntry, ok := n.getTemplate(".txt")
	if !ok {
		return nil
	}
	tmpl, ok := tmplEntry.(*texttmpl.Template)
	if !ok {
		return nil
	}

	var buff bytes.Buffer
	if err := tmpl.Execute(&buff, n.getContextData()); err != nil {
		return err
	}
	n.TextContent = buff.String()
	return nil
}

func (n *Notification) renderHTML() error {
	if n.TemplateName == "" {
		return nil
	}

	tmplEntry, ok := n.getTemplate(".gohtml")
	if !ok {
		return nil
	}
	tmpl, ok := tmplEntry.(*htmltmpl.Template)
	if !ok {
		return nil
	}

	var buff bytes.Buffer
	if err := tmpl.Execute(&buff, n.getContextData()); err != nil {
		return err
	}
	n.HTMLContent = buff.String()
	return nil
}

func (n *Notification) Render() error {
	if err := n.renderText(); err != nil {
		return err
	}
	return n.renderHTML()
}

func (n *Notification) HasRecipients() bool { return len(n.To) > 0 }
func (n *Notification) HasContent() bool    { return (n.TextContent != "") || (n.HTMLContent != "") }

func parseTemplates(conf *Config, logger Logger) {
	templates = make(tmplCache)

	rp := filepath.Join(conf.WorkDir, "assets", "templates", "notify")
	fps, err := filepath.Glob(filepath.Join(rp, "*"))
	if err != nil {
		logger.Error(fmt.Sprintf("parsing notify templates: %v", err), err)
	}

	for _, fp := range fps {
		fname := filepath.Base(fp)
		ext := filepath.Ext(fname)
		if strings.HasPrefix(fname, "_") || !(ext == ".txt" || ext == ".gohtml") {
			continue
		}
		name := fname[:strings.LastIndex(fname, ".")]
		entry, ok := templates[name]
		if !ok {
			templates[name] = make(tmplCacheEntry)
			entry = templates[name]
		}
		if ext == ".txt" {
			tmpl, err := texttmpl.ParseFiles(filepath.Join(rp, "_base.txt"), fp)
			if err != nil {
				logger.Error(fmt.Sprintf("parsing notify templates: %v", err), err)
				continue
			}
			if conf.Debug || conf.TestMode {
				tmpl = tmpl.Option("missingkey=error")
			}
			entry[ext] = tmpl
		} else {
			tmpl, err := htmltmpl.ParseFiles(filepath.Join(rp, "_base.gohtml"), fp)
			if err != nil {
				logger.Error(fmt.Sprintf("parsing notify templates: %v", err), err)
				continue
			}
			if conf.Debug || conf.TestMode {
				tmpl = tmpl.Option("missingkey=error")
			}
			entry[ext] = tmpl
		}
	}
}
