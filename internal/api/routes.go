package api

import (
	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	"github.com/emicklei/go-restful/v3"
	"github.com/opscore/support-sim/internal/api/middleware"
	"github.com/opscore/support-sim/internal/models"
)

func RegisterRoutes(container *restful.Container, handler *Handler) {
	ws := new(restful.WebService)

	ws.
		Path("/api/v1").
		Consumes(restful.MIME_JSON).
		Produces(restful.MIME_JSON)

	// Health endpoint
	ws.
		Route(ws.GET("health").
			To(handler.Health).
			Doc("Health check").
			Metadata(restfulspec.KeyOpenAPITags, []string{"health"}).
			Writes(HealthResponse{}).
			Returns(200, "OK", HealthResponse{}))

	ws.
		Route(ws.POST("/tests").
			To(handler.StartTest).
			Doc("Start a test suite").
			Metadata(restfulspec.KeyOpenAPITags, []string{"tests"}).
			Reads(StartTestRequest{}).
			Writes(StartTestResponse{}).
			Returns(202, "Accepted", StartTestResponse{}).
			Returns(400, "Bad Request", middleware.ErrorResponse{}))

	ws.
		Route(ws.GET("/tests").
			To(handler.ListTests).
			Doc("List all test sessions").
			Metadata(restfulspec.KeyOpenAPITags, []string{"tests"}).
			Writes([]models.TestSession{}).
			Returns(200, "OK", []models.TestSession{}))

	ws.
		Route(ws.GET("/tests/{test_id}").
			To(handler.GetTest).
			Doc("Get test session status").
			Metadata(restfulspec.KeyOpenAPITags, []string{"tests"}).
			Param(ws.PathParameter("test_id", "Test identifier").DataType("string")).
			Writes(models.TestSession{}).
			Returns(200, "OK", models.TestSession{}).
			Returns(404, "Not Found", middleware.ErrorResponse{}))

	ws.
		Route(ws.DELETE("/tests/{test_id}").
			To(handler.CancelTest).
			Doc("Cancel a running test suite").
			Metadata(restfulspec.KeyOpenAPITags, []string{"tests"}).
			Param(ws.PathParameter("test_id", "Test identifier").DataType("string")).
			Writes(models.TestSession{}).
			Returns(200, "OK", models.TestSession{}).
			Returns(404, "Not Found", middleware.ErrorResponse{}))

	ws.
		Route(ws.GET("/tests/{test_id}/report").
			To(handler.GetReport).
			Doc("Get the aggregated report for a finished test").
			Metadata(restfulspec.KeyOpenAPITags, []string{"tests"}).
			Param(ws.PathParameter("test_id", "Test identifier").DataType("string")).
			Writes(models.TestReport{}).
			Returns(200, "OK", models.TestReport{}).
			Returns(404, "Not Found", middleware.ErrorResponse{}))

	ws.
		Route(ws.GET("/tests/{test_id}/logs").
			To(handler.StreamLogs).
			Doc("Stream live conversation logs as server-sent events").
			Metadata(restfulspec.KeyOpenAPITags, []string{"tests"}).
			Param(ws.PathParameter("test_id", "Test identifier").DataType("string")).
			Produces("text/event-stream").
			Returns(200, "OK", nil).
			Returns(404, "Not Found", middleware.ErrorResponse{}))

	ws.
		Route(ws.POST("/conversations").
			To(handler.StartConversation).
			Doc("Start a single autonomous conversation").
			Metadata(restfulspec.KeyOpenAPITags, []string{"conversations"}).
			Reads(ConversationRequest{}).
			Writes(StartTestResponse{}).
			Returns(202, "Accepted", StartTestResponse{}).
			Returns(400, "Bad Request", middleware.ErrorResponse{}))

	container.Add(ws)
}
