package service

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

const (
	LeaderboardServiceName = "leaderz.v1.LeaderboardService"
	AdminServiceName       = "leaderz.v1.AdminService"
	AuthServiceName        = "leaderz.v1.AuthService"
)

// Procedure paths, in the form /package.Service/Method.
const (
	LeaderboardServiceGetTournamentProcedure    = "/" + LeaderboardServiceName + "/GetTournament"
	LeaderboardServiceGetLeaderboardProcedure   = "/" + LeaderboardServiceName + "/GetLeaderboard"
	LeaderboardServiceListChatMessagesProcedure = "/" + LeaderboardServiceName + "/ListChatMessages"

	AdminServiceCreateCourseProcedure     = "/" + AdminServiceName + "/CreateCourse"
	AdminServiceCreateTournamentProcedure = "/" + AdminServiceName + "/CreateTournament"
	AdminServiceListTournamentsProcedure  = "/" + AdminServiceName + "/ListTournaments"
	AdminServiceUpdateTournamentProcedure = "/" + AdminServiceName + "/UpdateTournament"
	AdminServiceDeleteTournamentProcedure = "/" + AdminServiceName + "/DeleteTournament"

	AuthServiceLoginProcedure = "/" + AuthServiceName + "/Login"
)

// routes maps procedure paths to unary handlers under one service prefix.
type routes map[string]http.Handler

func (rs routes) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h, ok := rs[r.URL.Path]; ok {
		h.ServeHTTP(w, r)
		return
	}
	http.NotFound(w, r)
}

func unary[Req, Res any](procedure string, fn func(context.Context, *connect.Request[Req]) (*connect.Response[Res], error), opts []connect.HandlerOption) http.Handler {
	return connect.NewUnaryHandler(procedure, fn, append(codecOptions(), opts...)...)
}

// NewLeaderboardServiceHandler returns the mount path and handler for the
// public leaderboard API.
func NewLeaderboardServiceHandler(svc *LeaderboardService, opts ...connect.HandlerOption) (string, http.Handler) {
	return "/" + LeaderboardServiceName + "/", routes{
		LeaderboardServiceGetTournamentProcedure:    unary(LeaderboardServiceGetTournamentProcedure, svc.GetTournament, opts),
		LeaderboardServiceGetLeaderboardProcedure:   unary(LeaderboardServiceGetLeaderboardProcedure, svc.GetLeaderboard, opts),
		LeaderboardServiceListChatMessagesProcedure: unary(LeaderboardServiceListChatMessagesProcedure, svc.ListChatMessages, opts),
	}
}

// NewAdminServiceHandler returns the mount path and handler for the
// organizer API. Callers pass the auth interceptor in opts.
func NewAdminServiceHandler(svc *AdminService, opts ...connect.HandlerOption) (string, http.Handler) {
	return "/" + AdminServiceName + "/", routes{
		AdminServiceCreateCourseProcedure:     unary(AdminServiceCreateCourseProcedure, svc.CreateCourse, opts),
		AdminServiceCreateTournamentProcedure: unary(AdminServiceCreateTournamentProcedure, svc.CreateTournament, opts),
		AdminServiceListTournamentsProcedure:  unary(AdminServiceListTournamentsProcedure, svc.ListTournaments, opts),
		AdminServiceUpdateTournamentProcedure: unary(AdminServiceUpdateTournamentProcedure, svc.UpdateTournament, opts),
		AdminServiceDeleteTournamentProcedure: unary(AdminServiceDeleteTournamentProcedure, svc.DeleteTournament, opts),
	}
}

// NewAuthServiceHandler returns the mount path and handler for organizer login.
func NewAuthServiceHandler(svc *AuthService, opts ...connect.HandlerOption) (string, http.Handler) {
	return "/" + AuthServiceName + "/", routes{
		AuthServiceLoginProcedure: unary(AuthServiceLoginProcedure, svc.Login, opts),
	}
}

func newClient[Req, Res any](httpClient connect.HTTPClient, baseURL, procedure string, opts []connect.ClientOption) *connect.Client[Req, Res] {
	opts = append([]connect.ClientOption{connect.WithCodec(jsonCodec{name: "json"})}, opts...)
	return connect.NewClient[Req, Res](httpClient, strings.TrimRight(baseURL, "/")+procedure, opts...)
}

// LeaderboardServiceClient calls the public leaderboard API.
type LeaderboardServiceClient struct {
	getTournament    *connect.Client[GetTournamentRequest, GetTournamentResponse]
	getLeaderboard   *connect.Client[GetLeaderboardRequest, GetLeaderboardResponse]
	listChatMessages *connect.Client[ListChatMessagesRequest, ListChatMessagesResponse]
}

func NewLeaderboardServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *LeaderboardServiceClient {
	return &LeaderboardServiceClient{
		getTournament:    newClient[GetTournamentRequest, GetTournamentResponse](httpClient, baseURL, LeaderboardServiceGetTournamentProcedure, opts),
		getLeaderboard:   newClient[GetLeaderboardRequest, GetLeaderboardResponse](httpClient, baseURL, LeaderboardServiceGetLeaderboardProcedure, opts),
		listChatMessages: newClient[ListChatMessagesRequest, ListChatMessagesResponse](httpClient, baseURL, LeaderboardServiceListChatMessagesProcedure, opts),
	}
}

func (c *LeaderboardServiceClient) GetTournament(ctx context.Context, req *connect.Request[GetTournamentRequest]) (*connect.Response[GetTournamentResponse], error) {
	return c.getTournament.CallUnary(ctx, req)
}

func (c *LeaderboardServiceClient) GetLeaderboard(ctx context.Context, req *connect.Request[GetLeaderboardRequest]) (*connect.Response[GetLeaderboardResponse], error) {
	return c.getLeaderboard.CallUnary(ctx, req)
}

func (c *LeaderboardServiceClient) ListChatMessages(ctx context.Context, req *connect.Request[ListChatMessagesRequest]) (*connect.Response[ListChatMessagesResponse], error) {
	return c.listChatMessages.CallUnary(ctx, req)
}

// AdminServiceClient calls the organizer API.
type AdminServiceClient struct {
	createCourse     *connect.Client[CreateCourseRequest, CreateCourseResponse]
	createTournament *connect.Client[CreateTournamentRequest, CreateTournamentResponse]
	listTournaments  *connect.Client[ListTournamentsRequest, ListTournamentsResponse]
	updateTournament *connect.Client[UpdateTournamentRequest, UpdateTournamentResponse]
	deleteTournament *connect.Client[DeleteTournamentRequest, DeleteTournamentResponse]
}

func NewAdminServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *AdminServiceClient {
	return &AdminServiceClient{
		createCourse:     newClient[CreateCourseRequest, CreateCourseResponse](httpClient, baseURL, AdminServiceCreateCourseProcedure, opts),
		createTournament: newClient[CreateTournamentRequest, CreateTournamentResponse](httpClient, baseURL, AdminServiceCreateTournamentProcedure, opts),
		listTournaments:  newClient[ListTournamentsRequest, ListTournamentsResponse](httpClient, baseURL, AdminServiceListTournamentsProcedure, opts),
		updateTournament: newClient[UpdateTournamentRequest, UpdateTournamentResponse](httpClient, baseURL, AdminServiceUpdateTournamentProcedure, opts),
		deleteTournament: newClient[DeleteTournamentRequest, DeleteTournamentResponse](httpClient, baseURL, AdminServiceDeleteTournamentProcedure, opts),
	}
}

func (c *AdminServiceClient) CreateCourse(ctx context.Context, req *connect.Request[CreateCourseRequest]) (*connect.Response[CreateCourseResponse], error) {
	return c.createCourse.CallUnary(ctx, req)
}

func (c *AdminServiceClient) CreateTournament(ctx context.Context, req *connect.Request[CreateTournamentRequest]) (*connect.Response[CreateTournamentResponse], error) {
	return c.createTournament.CallUnary(ctx, req)
}

func (c *AdminServiceClient) ListTournaments(ctx context.Context, req *connect.Request[ListTournamentsRequest]) (*connect.Response[ListTournamentsResponse], error) {
	return c.listTournaments.CallUnary(ctx, req)
}

func (c *AdminServiceClient) UpdateTournament(ctx context.Context, req *connect.Request[UpdateTournamentRequest]) (*connect.Response[UpdateTournamentResponse], error) {
	return c.updateTournament.CallUnary(ctx, req)
}

func (c *AdminServiceClient) DeleteTournament(ctx context.Context, req *connect.Request[DeleteTournamentRequest]) (*connect.Response[DeleteTournamentResponse], error) {
	return c.deleteTournament.CallUnary(ctx, req)
}

// AuthServiceClient calls organizer login.
type AuthServiceClient struct {
	login *connect.Client[LoginRequest, LoginResponse]
}

func NewAuthServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *AuthServiceClient {
	return &AuthServiceClient{
		login: newClient[LoginRequest, LoginResponse](httpClient, baseURL, AuthServiceLoginProcedure, opts),
	}
}

func (c *AuthServiceClient) Login(ctx context.Context, req *connect.Request[LoginRequest]) (*connect.Response[LoginResponse], error) {
	return c.login.CallUnary(ctx, req)
}
