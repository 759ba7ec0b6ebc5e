package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/skyresults/internal/domain"
	"github.com/Domenick1991/skyresults/internal/navigation"
	"github.com/Domenick1991/skyresults/internal/service/search"
	"github.com/Domenick1991/skyresults/internal/view"
	"github.com/gin-gonic/gin"
)

type SearchHandler struct {
	service    search.SearchUseCase
	nav        navigation.Navigator
	loc        *time.Location
	results    view.ResultStore
	resultsTTL time.Duration
}

type pageData struct {
	State    view.State
	Criteria domain.SearchCriteria
	Date     string
	Cards    []view.Card
	Message  string
	ResultID string
	Home     string
}

type criteriaResponse struct {
	From string `json:"from"`
	To   string `json:"to"`
	Date string `json:"date"`
}

type flightsResponse struct {
	State    view.State        `json:"state"`
	Source   search.Source     `json:"source,omitempty"`
	Criteria *criteriaResponse `json:"criteria,omitempty"`
	Message  string            `json:"message,omitempty"`
	ResultID string            `json:"result_id,omitempty"`
	Cards    []view.Card       `json:"cards"`
}

// NewSearchHandler serves the results page. Result lists are kept in results
// for resultsTTL so Book Now can pick from them; a nil store disables booking.
func NewSearchHandler(service search.SearchUseCase, nav navigation.Navigator, loc *time.Location, results view.ResultStore, resultsTTL time.Duration) *SearchHandler {
	return &SearchHandler{service: service, nav: nav, loc: loc, results: results, resultsTTL: resultsTTL}
}

func (h *SearchHandler) Register(router gin.IRoutes) {
	router.GET("/", h.home)
	router.GET("/search", h.page)
	router.GET("/api/flights", h.list)
}

func (h *SearchHandler) home(c *gin.Context) {
	c.HTML(http.StatusOK, "home.tmpl", nil)
}

func (h *SearchHandler) page(c *gin.Context) {
	snap := h.load(c)
	if snap.State == view.StateNoSearchData {
		c.HTML(http.StatusOK, "no_search_data.tmpl", pageData{Home: string(navigation.Home)})
		return
	}

	c.HTML(statusFor(snap.State), "results.tmpl", pageData{
		State:    snap.State,
		Criteria: snap.Criteria,
		Date:     snap.Criteria.DateString(),
		Cards:    snap.Cards,
		Message:  snap.Message(),
		ResultID: snap.ResultID,
		Home:     string(navigation.Home),
	})
}

func (h *SearchHandler) list(c *gin.Context) {
	snap := h.load(c)

	resp := flightsResponse{
		State:    snap.State,
		Source:   snap.Source,
		Message:  snap.Message(),
		ResultID: snap.ResultID,
		Cards:    snap.Cards,
	}
	if resp.Cards == nil {
		resp.Cards = []view.Card{}
	}
	if snap.State != view.StateNoSearchData {
		resp.Criteria = &criteriaResponse{
			From: snap.Criteria.Origin,
			To:   snap.Criteria.Destination,
			Date: snap.Criteria.DateString(),
		}
	}
	c.JSON(statusFor(snap.State), resp)
}

// load runs one results view for the request's criteria and waits for it
// to settle.
func (h *SearchHandler) load(c *gin.Context) view.Snapshot {
	criteria := domain.ParseCriteria(c.Query("from"), c.Query("to"), c.Query("date"), h.loc)

	opts := []view.Option{view.WithLocation(h.loc)}
	if h.results != nil {
		opts = append(opts, view.WithResultStore(h.results, h.resultsTTL))
	}
	v := view.New(h.service, h.nav, opts...)
	defer v.Close()

	<-v.SetCriteria(c.Request.Context(), &criteria)
	return v.Snapshot()
}

func statusFor(state view.State) int {
	if state == view.StateError {
		return http.StatusBadGateway
	}
	return http.StatusOK
}
