package controller

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"ai-contract-review-be/internal/dto"
	"ai-contract-review-be/internal/pkg/serverutils"
	"ai-contract-review-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Send(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
}

func NewChatController(chatService service.IChatService) IChatController {
	return &chatController{
		chatService: chatService,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post(":contractId", c.Send)
	h.Get(":contractId/history", c.History)
}

// Send streams the assistant's answer as Server-Sent Events. Each delta is
// a `data:` line with a JSON fragment; the stream ends with `data: [DONE]`.
func (c *chatController) Send(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	contractId, err := uuid.Parse(ctx.Params("contractId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid contract id")
	}

	var req dto.SendChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	ctx.Set("Content-Type", "text/event-stream")
	ctx.Set("Cache-Control", "no-cache")
	ctx.Set("Connection", "keep-alive")
	ctx.Set("Transfer-Encoding", "chunked")

	// The handler returns before the stream finishes, so the service runs
	// on its own context inside the body writer.
	ctx.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		streamErr := c.chatService.Stream(context.Background(), userId, contractId, &req, func(delta string) error {
			payload, err := json.Marshal(map[string]string{"text": delta})
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
				return err
			}
			return w.Flush()
		})

		if streamErr != nil {
			msg := "stream failed"
			switch {
			case errors.Is(streamErr, service.ErrContractNotFound):
				msg = "contract not found"
			case errors.Is(streamErr, service.ErrAnalysisNotReady):
				msg = "contract has no completed analysis"
			}
			payload, _ := json.Marshal(map[string]string{"error": msg})
			fmt.Fprintf(w, "data: %s\n\n", payload)
		}

		fmt.Fprintf(w, "data: [DONE]\n\n")
		w.Flush()
	}))

	return nil
}

func (c *chatController) History(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	contractId, err := uuid.Parse(ctx.Params("contractId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid contract id")
	}

	res, err := c.chatService.History(ctx.Context(), userId, contractId)
	if err != nil {
		if errors.Is(err, service.ErrContractNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, "Contract not found"))
		}
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get chat history", res))
}
