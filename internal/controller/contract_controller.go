package controller

import (
	"strconv"

	"ai-contract-review-be/internal/dto"
	"ai-contract-review-be/internal/pkg/serverutils"
	"ai-contract-review-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IContractController interface {
	RegisterRoutes(r fiber.Router)
	Upload(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	RequestAnalysis(ctx *fiber.Ctx) error
}

type contractController struct {
	contractService service.IContractService
}

func NewContractController(contractService service.IContractService) IContractController {
	return &contractController{
		contractService: contractService,
	}
}

func (c *contractController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/contract/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.Upload)
	h.Get("", c.List)
	h.Get(":id", c.Show)
	h.Post(":id/analyze", c.RequestAnalysis)
}

func (c *contractController) Upload(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	file, err := ctx.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Missing contract file")
	}

	years, _ := strconv.Atoi(ctx.FormValue("years_experience", "0"))
	req := dto.UploadContractRequest{
		JobTitle:        ctx.FormValue("job_title"),
		YearsExperience: years,
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.contractService.Upload(ctx.Context(), userId, &req, file)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Contract uploaded", res))
}

func (c *contractController) List(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	res, err := c.contractService.List(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list contracts", res))
}

func (c *contractController) Show(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid contract id")
	}

	res, err := c.contractService.Show(ctx.Context(), userId, id)
	if err != nil {
		return err
	}
	if res == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, "Contract not found"))
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show contract", res))
}

func (c *contractController) RequestAnalysis(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid contract id")
	}

	res, err := c.contractService.RequestAnalysis(ctx.Context(), userId, id)
	if err != nil {
		return ctx.Status(fiber.StatusConflict).JSON(serverutils.ErrorResponse(409, err.Error()))
	}
	if res == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, "Contract not found"))
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Analysis requested", res))
}
