package mockserver

import (
	"encoding/json"
	"net/http"
	"time"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/miroq/mau"
	"github.com/miroq/mau/internal/handler/health"
)

type roomPath struct {
	ID string `path:"id"`
}

type roomMemberPath struct {
	ID     string `path:"id"`
	UserID string `path:"uid"`
}

type userPath struct {
	UserID string `path:"uid"`
}

type usernamePath struct {
	Username string `path:"username"`
}

type colorPath struct {
	Color int `path:"n" minimum:"0" maximum:"7"`
}

type categoryPath struct {
	Category string `path:"category" enum:"gems,games,wins,cards"`
}

type rankPath struct {
	Username string `path:"username"`
	Category string `path:"category" enum:"gems,games,wins,cards"`
}

// handSchema documents mau.Hand: a card count for other players, the card
// list for the caller.
type handSchema struct{}

func (handSchema) JSONSchemaOneOf() []interface{} {
	return []interface{}{0, []mau.Card{}}
}

type apiOperation struct {
	method, path string
	summary      string
	auth         bool
	req          any
	resp         any
	errors       []int
}

var apiOperations = []apiOperation{
	{http.MethodGet, "/api/rooms", "List open rooms", false, nil, []mau.Room{}, nil},
	{http.MethodGet, "/api/rooms/random", "Random open room", false, nil, mau.Room{}, []int{404}},
	{http.MethodGet, "/api/rooms/{id}", "Get room", false, roomPath{}, mau.Room{}, []int{404}},
	{http.MethodGet, "/api/rooms/active", "Current room of the caller", true, nil, mau.Room{}, []int{401, 404}},
	{http.MethodPost, "/api/rooms", "Create room", true, nil, mau.Room{}, []int{401, 409}},
	{http.MethodPut, "/api/rooms/", "Edit the caller's room", true, mau.RoomEdit{}, mau.Room{}, []int{400, 401, 403, 404, 409}},
	{http.MethodDelete, "/api/rooms/{id}", "Delete room", true, roomPath{}, mau.RoomDelete{}, []int{401, 403, 404}},
	{http.MethodPost, "/api/rooms/{id}/join", "Join room", true, roomPath{}, mau.Room{}, []int{401, 404, 409}},
	{http.MethodPost, "/api/rooms/{id}/leave", "Leave room", true, roomPath{}, mau.Room{}, []int{401, 404, 409}},
	{http.MethodPost, "/api/rooms/{id}/kick/{uid}", "Kick room member", true, roomMemberPath{}, mau.Room{}, []int{400, 401, 403, 404}},
	{http.MethodPost, "/api/rooms/{id}/owner/{uid}", "Transfer room ownership", true, roomMemberPath{}, mau.Room{}, []int{401, 403, 404}},

	{http.MethodGet, "/api/users", "List users", false, nil, []mau.User{}, nil},
	{http.MethodGet, "/api/users/{username}", "Get user", false, usernamePath{}, mau.User{}, []int{404}},
	{http.MethodPost, "/api/users", "Register", false, mau.UserCredentials{}, mau.User{}, []int{400, 409}},
	{http.MethodPost, "/api/users/login", "Log in", false, mau.UserCredentials{}, mau.TokenResult{}, []int{400, 401}},
	{http.MethodGet, "/api/users/me", "Current user", true, nil, mau.User{}, []int{401}},
	{http.MethodPut, "/api/users/", "Edit profile", true, mau.UserEdit{}, mau.User{}, []int{400, 401}},
	{http.MethodPost, "/api/users/change-password", "Change password", true, mau.UserChangePassword{}, mau.User{}, []int{400, 401, 403}},

	{http.MethodGet, "/api/leaderboard/{category}", "Leaderboard", false, categoryPath{}, []mau.User{}, []int{400}},
	{http.MethodGet, "/api/leaderboard/{username}/{category}", "Player rank", false, rankPath{}, 0, []int{400, 404}},

	{http.MethodGet, "/api/game/", "Current game", true, nil, mau.GameContext{}, []int{401, 404, 409}},
	{http.MethodPost, "/api/game/join", "Join game", true, nil, mau.GameContext{}, []int{401, 404, 409}},
	{http.MethodPost, "/api/game/leave", "Leave game", true, nil, mau.GameContext{}, []int{401, 404, 409}},
	{http.MethodPost, "/api/game/start", "Start game", true, nil, mau.GameContext{}, []int{401, 403, 404, 409}},
	{http.MethodPost, "/api/game/end", "End game", true, nil, mau.GameContext{}, []int{401, 403, 404, 409}},
	{http.MethodPost, "/api/game/kick/{uid}", "Kick player from game", true, userPath{}, mau.GameContext{}, []int{400, 401, 403, 404, 409}},
	{http.MethodPost, "/api/game/skip", "Skip turn", true, nil, mau.GameContext{}, []int{401, 404, 409}},
	{http.MethodPost, "/api/game/next", "Next turn", true, nil, mau.GameContext{}, []int{401, 404, 409}},
	{http.MethodPost, "/api/game/take", "Take cards", true, nil, mau.GameContext{}, []int{401, 404, 409}},
	{http.MethodPost, "/api/game/shotgun/take", "Shotgun: take", true, nil, mau.GameContext{}, []int{401, 404, 409}},
	{http.MethodPost, "/api/game/shotgun/shot", "Shotgun: shoot", true, nil, mau.GameContext{}, []int{401, 404, 409}},
	{http.MethodPost, "/api/game/bluff", "Call bluff", true, nil, mau.GameContext{}, []int{401, 404, 409}},
	{http.MethodPost, "/api/game/color/{n}", "Choose color", true, colorPath{}, mau.GameContext{}, []int{400, 401, 404, 409}},
	{http.MethodPost, "/api/game/player/{uid}", "Choose player", true, userPath{}, mau.GameContext{}, []int{400, 401, 404, 409}},
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Mau API (mock)"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Local stand-in for the Mau card game API.")

	r.AddTypeMapping(mau.Timestamp{}, time.Time{})
	r.AddTypeMapping(mau.Hand{}, handSchema{})

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(health.Report{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(health.Report{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	for _, op := range apiOperations {
		oc, err := r.NewOperationContext(op.method, op.path)
		if err != nil {
			continue
		}
		oc.SetSummary(op.summary)
		if op.auth {
			oc.SetDescription("Requires Bearer token.")
		}
		if op.req != nil {
			oc.AddReqStructure(op.req)
		}
		oc.AddRespStructure(op.resp, openapi.WithHTTPStatus(http.StatusOK))
		for _, status := range op.errors {
			oc.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(status))
		}
		_ = r.AddOperation(oc)
	}

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
