// Copyright (c) 2025 BVK Chaitanya

package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/bvk/coinwatch/api"
	"github.com/bvk/coinwatch/watchlist"
)

// HandlerMap returns the control endpoints served by the daemon.
func (s *Server) HandlerMap() map[string]http.Handler {
	return map[string]http.Handler{
		"/status":   httpPostJSONHandler(s.doStatus),
		"/login":    httpPostJSONHandler(s.doLogin),
		"/register": httpPostJSONHandler(s.doRegister),
		"/logout":   httpPostJSONHandler(s.doLogout),

		"/markets": httpPostJSONHandler(s.doMarkets),
		"/coin":    httpPostJSONHandler(s.doCoin),
		"/refresh": httpPostJSONHandler(s.doRefresh),

		"/watch/list":   httpPostJSONHandler(s.doWatchList),
		"/watch/toggle": httpPostJSONHandler(s.doWatchToggle),
		"/watch/add":    httpPostJSONHandler(s.doWatchAdd),
		"/watch/remove": httpPostJSONHandler(s.doWatchRemove),
		"/watch/clear":  httpPostJSONHandler(s.doWatchClear),
		"/watch/check":  httpPostJSONHandler(s.doWatchCheck),
		"/watch/import": httpPostJSONHandler(s.doWatchImport),
		"/watch/stats":  httpPostJSONHandler(s.doWatchStats),

		"/alerts/set": httpPostJSONHandler(s.doAlertsSet),

		"/ws": http.HandlerFunc(s.serveWebsocket),
	}
}

func httpPostJSONHandler[T1 any, T2 any](fun func(context.Context, *T1) (*T2, error)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "invalid http method type", http.StatusMethodNotAllowed)
			return
		}
		if v := r.Header.Get("content-type"); !strings.EqualFold(v, "application/json") {
			http.Error(w, "unsupported content type", http.StatusBadRequest)
			return
		}
		req := new(T1)
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		resp, err := fun(r.Context(), req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		jsdata, err := json.Marshal(resp)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("content-type", "application/json")
		w.Write(jsdata)
	})
}

// requireAuth fails when no user is logged-in.
func (s *Server) requireAuth() error {
	if cur := s.sessionManager.Current(); !cur.Authenticated {
		return fmt.Errorf("this operation requires a logged-in user")
	}
	return nil
}

func (s *Server) doStatus(ctx context.Context, req *api.StatusRequest) (*api.StatusResponse, error) {
	resp := &api.StatusResponse{
		NumWatched: len(s.watchlistReconciler().CoinIDs()),
	}
	if cur := s.sessionManager.Current(); cur.Authenticated {
		resp.Authenticated = true
		resp.UserName = cur.User.Name
		resp.UserEmail = cur.User.Email
	}
	snap, lastErr := s.poller.Last()
	if snap != nil {
		resp.LastFetchTime = snap.Timestamp
	}
	if lastErr != nil {
		resp.LastFetchError = lastErr.Error()
	}
	s.mu.Lock()
	resp.PriceAlertPct = s.state.PriceAlertPct
	s.mu.Unlock()
	return resp, nil
}

func (s *Server) doLogin(ctx context.Context, req *api.LoginRequest) (*api.LoginResponse, error) {
	if err := req.Check(); err != nil {
		return nil, err
	}
	cur, err := s.sessionManager.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	s.resetWatchlist(ctx)
	return &api.LoginResponse{
		UserName:  cur.User.Name,
		UserEmail: cur.User.Email,
	}, nil
}

func (s *Server) doRegister(ctx context.Context, req *api.RegisterRequest) (*api.RegisterResponse, error) {
	if err := req.Check(); err != nil {
		return nil, err
	}
	cur, err := s.sessionManager.Register(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	resp := new(api.RegisterResponse)
	if cur.Authenticated {
		resp.LoggedIn = true
		resp.UserName = cur.User.Name
		resp.UserEmail = cur.User.Email
		s.resetWatchlist(ctx)
	}
	return resp, nil
}

func (s *Server) doLogout(ctx context.Context, req *api.LogoutRequest) (*api.LogoutResponse, error) {
	if err := s.sessionManager.Logout(ctx); err != nil {
		return nil, err
	}
	s.resetWatchlist(ctx)
	return &api.LogoutResponse{}, nil
}

func (s *Server) doMarkets(ctx context.Context, req *api.MarketsRequest) (*api.MarketsResponse, error) {
	snap, lastErr := s.poller.Last()

	resp := new(api.MarketsResponse)
	if lastErr != nil {
		resp.FetchError = lastErr.Error()
	}
	if snap == nil {
		return resp, nil
	}
	resp.Timestamp = snap.Timestamp
	resp.Currency = snap.Currency
	resp.Markets = snap.Markets
	if req.WatchedOnly {
		resp.Markets = watchlist.Join(snap.Markets, s.watchlistReconciler().CoinIDs())
	}
	return resp, nil
}

func (s *Server) doCoin(ctx context.Context, req *api.CoinRequest) (*api.CoinResponse, error) {
	if err := req.Check(); err != nil {
		return nil, err
	}
	coin, err := s.gecko.GetCoin(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	resp := &api.CoinResponse{Coin: coin}
	if req.ChartDays > 0 {
		chart, err := s.gecko.GetMarketChart(ctx, req.ID, s.opts.Currency, req.ChartDays)
		if err != nil {
			return nil, err
		}
		resp.Chart = chart
	}
	return resp, nil
}

func (s *Server) doRefresh(ctx context.Context, req *api.RefreshRequest) (*api.RefreshResponse, error) {
	if err := s.poller.Refresh(ctx); err != nil {
		return nil, err
	}
	resp := new(api.RefreshResponse)
	if snap, _ := s.poller.Last(); snap != nil {
		resp.Timestamp = snap.Timestamp
		resp.NumMarkets = len(snap.Markets)
	}
	return resp, nil
}

func (s *Server) doWatchList(ctx context.Context, req *api.WatchListRequest) (*api.WatchListResponse, error) {
	return &api.WatchListResponse{CoinIDs: s.watchlistReconciler().CoinIDs()}, nil
}

func (s *Server) doWatchToggle(ctx context.Context, req *api.WatchToggleRequest) (*api.WatchToggleResponse, error) {
	if err := req.Check(); err != nil {
		return nil, err
	}
	added, err := s.watchlistReconciler().Toggle(ctx, req.CoinID)
	if err != nil {
		return nil, err
	}
	return &api.WatchToggleResponse{Added: added}, nil
}

func (s *Server) doWatchAdd(ctx context.Context, req *api.WatchAddRequest) (*api.WatchAddResponse, error) {
	if len(req.CoinID) == 0 {
		return nil, fmt.Errorf("coin id cannot be empty")
	}
	if err := s.watchlistReconciler().Add(ctx, req.CoinID); err != nil {
		return nil, err
	}
	return &api.WatchAddResponse{}, nil
}

func (s *Server) doWatchRemove(ctx context.Context, req *api.WatchRemoveRequest) (*api.WatchRemoveResponse, error) {
	if len(req.CoinID) == 0 {
		return nil, fmt.Errorf("coin id cannot be empty")
	}
	if err := s.watchlistReconciler().Remove(ctx, req.CoinID); err != nil {
		return nil, err
	}
	return &api.WatchRemoveResponse{}, nil
}

func (s *Server) doWatchClear(ctx context.Context, req *api.WatchClearRequest) (*api.WatchClearResponse, error) {
	if err := s.watchlistReconciler().Clear(ctx); err != nil {
		return nil, err
	}
	return &api.WatchClearResponse{}, nil
}

// doWatchCheck reports the watched state of a single coin. For a logged-in
// user the backend answer is authoritative; anonymous sessions answer from
// the local view.
func (s *Server) doWatchCheck(ctx context.Context, req *api.WatchCheckRequest) (*api.WatchCheckResponse, error) {
	if err := req.Check(); err != nil {
		return nil, err
	}
	if cur := s.sessionManager.Current(); cur.Authenticated {
		watched, err := s.backendClient.WatchlistCheck(ctx, cur.Token, cur.User.ID, req.CoinID)
		if err != nil {
			return nil, err
		}
		return &api.WatchCheckResponse{Watched: watched}, nil
	}
	return &api.WatchCheckResponse{Watched: s.watchlistReconciler().Has(req.CoinID)}, nil
}

func (s *Server) doWatchImport(ctx context.Context, req *api.WatchImportRequest) (*api.WatchImportResponse, error) {
	if err := s.requireAuth(); err != nil {
		return nil, err
	}
	if len(req.CoinIDs) == 0 {
		return nil, fmt.Errorf("coin id list cannot be empty")
	}
	cur := s.sessionManager.Current()
	n, err := s.backendClient.WatchlistBulkAdd(ctx, cur.Token, cur.User.ID, req.CoinIDs)
	if err != nil {
		return nil, err
	}
	s.resetWatchlist(ctx)
	return &api.WatchImportResponse{NumAdded: n}, nil
}

func (s *Server) doWatchStats(ctx context.Context, req *api.WatchStatsRequest) (*api.WatchStatsResponse, error) {
	if err := s.requireAuth(); err != nil {
		return nil, err
	}
	cur := s.sessionManager.Current()
	stats, err := s.backendClient.WatchlistStats(ctx, cur.Token, cur.User.ID)
	if err != nil {
		return nil, err
	}
	return &api.WatchStatsResponse{Count: stats.Count, UpdatedAt: stats.UpdatedAt}, nil
}

func (s *Server) doAlertsSet(ctx context.Context, req *api.AlertsSetRequest) (*api.AlertsSetResponse, error) {
	if err := req.Check(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.state.PriceAlertPct = req.PriceAlertPct
	s.mu.Unlock()
	if err := s.saveState(ctx); err != nil {
		return nil, err
	}
	return &api.AlertsSetResponse{}, nil
}
