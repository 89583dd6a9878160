package renderer

import (
	"context"
	"os"
	"time"

	"github.com/chromedp/chromedp"
)

const USER_AGENT = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/118.0.0.0 Safari/537.36"

// renderTimeout 는 페이지 하나를 그리는 데 허용하는 최대 시간이다.
const renderTimeout = 30 * time.Second

// RenderHTML 은 헤드리스 크롬으로 pageURL 을 열어 스크립트 실행 후의 HTML 을 돌려준다.
// 본문을 JS 로 채우는 시 사이트(피드에는 요약만 있는 경우)에 쓴다.
func RenderHTML(ctx context.Context, pageURL string) (string, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocatorOptions(chromePath())...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()
	runCtx, cancel := context.WithTimeout(browserCtx, renderTimeout)
	defer cancel()

	var htmlContent string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(1*time.Second),
		chromedp.OuterHTML("html", &htmlContent),
	)
	if err != nil {
		return "", err
	}
	return htmlContent, nil
}

// allocatorOptions 는 컨테이너 안에서 sandbox 없이 도는 headless 설정이다.
func allocatorOptions(execPath string) []chromedp.ExecAllocatorOption {
	flags := []string{
		"no-sandbox", "disable-gpu", "disable-dev-shm-usage", "disable-crashpad",
		"disable-breakpad", "no-first-run", "no-default-browser-check", "disable-extensions", "headless",
	}
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts, chromedp.ExecPath(execPath), chromedp.UserAgent(USER_AGENT))
	for _, f := range flags {
		opts = append(opts, chromedp.Flag(f, true))
	}
	return opts
}

func chromePath() string {
	if p := os.Getenv("CHROME_PATH"); p != "" {
		return p
	}
	return "/usr/bin/chromium-browser" // Docker/Linux 기본
}
