package bancho

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// webAPI is the thin pre-login probe described in §1: only the two calls
// the core actually needs before it can log in. Everything else (the REST
// helper for leaderboards, comments, avatars, osz downloads, search) is an
// explicit Non-goal.
type webAPI struct {
	server string
	client *http.Client
}

func newWebAPI(server string) *webAPI {
	return &webAPI{server: server, client: &http.Client{}}
}

// FetchVersion follows /home/changelog/{stream} redirects and returns the
// build version encoded in the final path segment, matching the
// historical client's pre-login version probe.
func (w *webAPI) FetchVersion(ctx context.Context, stream string) (int, error) {
	url := fmt.Sprintf("https://osu.%s/home/changelog/%s", w.server, stream)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, errors.Wrap(err, "build version request")
	}

	resp, err := w.client.Do(httpReq)
	if err != nil {
		return 0, newTransportError(err, "fetch version")
	}
	defer resp.Body.Close()

	segment := path.Base(strings.TrimSuffix(resp.Request.URL.Path, "/"))
	version, err := strconv.Atoi(segment)
	if err != nil {
		return 0, errors.Wrapf(err, "parse version from path segment %q", segment)
	}
	return version, nil
}

// CheckUpdates fetches the seasonal backgrounds / menu JSON blob used to
// decide whether local client files are current. The core only needs the
// raw bytes — parsing the menu content is out of scope (§1).
func (w *webAPI) CheckUpdates(ctx context.Context) ([]byte, error) {
	url := fmt.Sprintf("https://osu.%s/session/menu-content", w.server)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build menu request")
	}

	resp, err := w.client.Do(httpReq)
	if err != nil {
		return nil, newTransportError(err, "check updates")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read menu content")
	}
	return data, nil
}
