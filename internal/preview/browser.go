package preview

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/sirupsen/logrus"
)

// browserTimeout bounds a single card render in the browser.
const browserTimeout = 30 * time.Second

// ErrNoBrowser is returned when no Chromium executable can be found.
var ErrNoBrowser = errors.New("rod browser dependency not found")

var cardTemplate = template.Must(template.New("card").Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><style>
html,body{margin:0;width:{{.Width}}px;height:{{.Height}}px;overflow:hidden;font-family:sans-serif}
.card{height:100%;width:100%;display:flex;flex-direction:column;align-items:center;justify-content:center;background:linear-gradient(135deg,#0A0A0A 0%,#1a1a2e 50%,#0A0A0A 100%);position:relative}
.orb{position:absolute;filter:blur(80px)}
.orb.a{top:20%;left:20%;width:400px;height:400px;background:radial-gradient(circle,rgba(6,182,212,.3) 0%,transparent 70%)}
.orb.b{bottom:20%;right:20%;width:350px;height:350px;background:radial-gradient(circle,rgba(14,165,233,.3) 0%,transparent 70%)}
.panel{display:flex;flex-direction:column;padding:80px;max-width:1000px;box-sizing:border-box;background:rgba(255,255,255,.05);backdrop-filter:blur(20px);border-radius:40px;border:1px solid rgba(255,255,255,.1);position:relative}
.caption{font-size:48px;font-weight:600;color:rgba(255,255,255,.95);line-height:1.4;margin-bottom:40px;overflow-wrap:anywhere}
.mark{display:flex;align-items:center;gap:12px;font-size:24px;color:rgba(6,182,212,.8)}
.badge{width:32px;height:32px;background:rgba(6,182,212,.2);border-radius:8px;display:flex;align-items:center;justify-content:center}
</style></head><body><div class="card">
<div class="orb a"></div><div class="orb b"></div>
<div class="panel"><div class="caption">{{.Caption}}</div>
<div class="mark"><div class="badge">&#10024;</div><span>{{.Watermark}}</span></div></div>
</div></body></html>`))

// CardHTML returns the standalone HTML document of the card for content.
func CardHTML(content string) (string, error) {
	var buf bytes.Buffer
	err := cardTemplate.Execute(&buf, struct {
		Width, Height      int
		Caption, Watermark string
	}{Width, Height, Caption(content), Watermark})
	if err != nil {
		return "", fmt.Errorf("failed to render card html: %w", err)
	}
	return buf.String(), nil
}

// BrowserRenderer screenshots the card HTML in headless Chromium via rod.
type BrowserRenderer struct {
	log logrus.FieldLogger
}

// NewBrowserRenderer creates a renderer that launches a browser per card.
func NewBrowserRenderer(logger logrus.FieldLogger) *BrowserRenderer {
	return &BrowserRenderer{log: logger.WithField("component", "preview_browser")}
}

// Render draws the card for content in a fresh browser and returns the PNG
// screenshot of the viewport.
func (r *BrowserRenderer) Render(ctx context.Context, content string) (png []byte, err error) {
	log := r.log
	doc, err := CardHTML(content)
	if err != nil {
		return nil, err
	}

	path, exists := launcher.LookPath()
	if !exists {
		log.Error("Cannot find browser executable for rod")
		return nil, ErrNoBrowser
	}
	u, err := launcher.New().Bin(path).Headless(true).Launch()
	if err != nil {
		log.WithError(err).Error("Failed to launch rod browser")
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}
	browser := rod.New().ControlURL(u)
	if err = browser.Connect(); err != nil {
		log.WithError(err).Error("Failed to connect to rod browser")
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}
	defer func() {
		if closeErr := browser.Close(); closeErr != nil {
			log.WithError(closeErr).Error("Error closing rod browser instance")
			if err == nil {
				png, err = nil, fmt.Errorf("error closing browser: %w", closeErr)
			}
		}
	}()

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		log.WithError(err).Error("Failed to create rod page")
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	pageCtx, cancel := context.WithTimeout(ctx, browserTimeout)
	defer cancel()
	page = page.Context(pageCtx)

	err = page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             Width,
		Height:            Height,
		DeviceScaleFactor: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set viewport: %w", err)
	}
	if err = page.SetDocumentContent(doc); err != nil {
		return nil, fmt.Errorf("failed to load card: %w", err)
	}
	if err = page.WaitLoad(); err != nil {
		if errors.Is(pageCtx.Err(), context.DeadlineExceeded) {
			log.WithError(pageCtx.Err()).Warn("Card render timed out")
			return nil, fmt.Errorf("card render timed out: %w", pageCtx.Err())
		}
		return nil, fmt.Errorf("failed waiting for card load: %w", err)
	}

	png, err = page.Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		log.WithError(err).Error("Failed to capture card screenshot")
		return nil, fmt.Errorf("failed to capture screenshot: %w", err)
	}

	log.Debug("Preview card rendered in browser")
	return png, nil
}
