package scraper

import (
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// configToProto maps human-readable config strings to Rod protocol resource types.
var configToProto = map[string]proto.NetworkResourceType{
	"Image":      proto.NetworkResourceTypeImage,
	"Stylesheet": proto.NetworkResourceTypeStylesheet,
	"Font":       proto.NetworkResourceTypeFont,
	"Media":      proto.NetworkResourceTypeMedia,
}

// hostBlocked reports whether host equals, or is a subdomain of, a blocked host.
func hostBlocked(host string, blocked map[string]struct{}) bool {
	host = strings.ToLower(host)
	for host != "" {
		if _, ok := blocked[host]; ok {
			return true
		}
		idx := strings.IndexByte(host, '.')
		if idx < 0 {
			break
		}
		host = host[idx+1:]
	}
	return false
}

// setupHijack installs a request interceptor that fails requests for the
// given resource types and hosts. The rate cells never depend on them, and
// skipping them shortens the time to the load event.
//
// Returns nil if there is nothing to block; otherwise the caller must Stop
// the router.
func setupHijack(page *rod.Page, blockedTypes, blockedHosts []string) *rod.HijackRouter {
	types := make(map[proto.NetworkResourceType]struct{}, len(blockedTypes))
	for _, name := range blockedTypes {
		if rt, ok := configToProto[name]; ok {
			types[rt] = struct{}{}
		}
	}
	hosts := make(map[string]struct{}, len(blockedHosts))
	for _, h := range blockedHosts {
		hosts[strings.ToLower(strings.TrimSpace(h))] = struct{}{}
	}
	if len(types) == 0 && len(hosts) == 0 {
		return nil
	}

	router := page.HijackRequests()
	_ = router.Add("*", "", func(ctx *rod.Hijack) {
		if _, ok := types[ctx.Request.Type()]; ok {
			ctx.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		if hostBlocked(ctx.Request.URL().Hostname(), hosts) {
			ctx.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		ctx.ContinueRequest(&proto.FetchContinueRequest{})
	})

	// Run blocks until Stop.
	go router.Run()

	return router
}
