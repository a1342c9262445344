package api

import (
	"errors"

	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/mentor-hub-api/utils/response"
)

// BodyLimit admits audio uploads plus multipart overhead.
const BodyLimit = 55 * 1024 * 1024

type APIServer struct {
	app           *fiber.App
	listenAddress string
}

func NewAPIServer(listenAddress string, production bool) *APIServer {
	return &APIServer{
		app: fiber.New(fiber.Config{
			AppName:      "mentor-hub-api",
			BodyLimit:    BodyLimit,
			ErrorHandler: ErrorHandler(production),
		}),
		listenAddress: listenAddress,
	}
}

func (s *APIServer) GetEngine() *fiber.App {
	return s.app
}

func (s *APIServer) Run() error {
	log.Info("starting API server", "addr", s.listenAddress)
	return s.app.Listen(s.listenAddress)
}

func (s *APIServer) Shutdown() error {
	return s.app.Shutdown()
}

// ErrorHandler turns errors that escaped the handlers into the response envelope. Fiber
// errors keep their status; anything else is a 500 whose text is hidden in production.
func ErrorHandler(production bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			switch fe.Code {
			case fiber.StatusNotFound:
				return response.NotFound(c, fe.Message)
			case fiber.StatusRequestEntityTooLarge:
				return response.Error(c, fe.Code, "Request body too large", "PAYLOAD_TOO_LARGE")
			default:
				return response.Error(c, fe.Code, fe.Message, "HTTP_ERROR")
			}
		}

		log.Error("request failed",
			"method", c.Method(),
			"path", c.Path(),
			"request_id", c.Locals("requestid"),
			"err", err,
		)
		if production {
			return response.InternalServerError(c, "")
		}
		return response.ErrorWithDetails(c, fiber.StatusInternalServerError, "Internal server error", "INTERNAL_ERROR", err.Error())
	}
}
