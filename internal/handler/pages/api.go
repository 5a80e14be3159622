package pages

import (
	"net/http"

	"rtm-portal/internal/content"

	"github.com/labstack/echo/v4"
)

// swagger:model pages.HeroResponse
type HeroResponse struct {
	Success bool         `json:"success" example:"true"`
	Hero    content.Hero `json:"hero"`
}

// swagger:model pages.FAQsResponse
type FAQsResponse struct {
	Success    bool          `json:"success" example:"true"`
	Categories []string      `json:"categories"`
	FAQs       []content.FAQ `json:"faqs"`
}

// PlanResponse adds the formatted price to a plan.
type PlanResponse struct {
	content.Plan
	Price string `json:"price" example:"£499"`
}

// swagger:model pages.PricingResponse
type PricingResponse struct {
	Success bool           `json:"success" example:"true"`
	Plans   []PlanResponse `json:"plans"`
}

// @Summary     Hero copy
// @Tags        content
// @Produce     json
// @Param       variant query    string false "hero variant"
// @Success     200     {object} pages.HeroResponse
// @Router      /content/hero [get]
func HeroAPIHandler(site *content.Site) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, HeroResponse{Success: true, Hero: site.Hero(variant(c, site))})
	}
}

// @Summary     FAQs
// @Tags        content
// @Produce     json
// @Param       category query    string false "only this category"
// @Success     200      {object} pages.FAQsResponse
// @Router      /content/faqs [get]
func FAQsAPIHandler(site *content.Site) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, FAQsResponse{
			Success:    true,
			Categories: site.Categories(),
			FAQs:       site.FAQs(c.QueryParam("category")),
		})
	}
}

// @Summary     Pricing plans
// @Tags        content
// @Produce     json
// @Success     200 {object} pages.PricingResponse
// @Router      /content/pricing [get]
func PricingAPIHandler(site *content.Site) echo.HandlerFunc {
	return func(c echo.Context) error {
		plans := make([]PlanResponse, 0, len(site.Pricing()))
		for _, p := range site.Pricing() {
			plans = append(plans, PlanResponse{Plan: p, Price: p.Price()})
		}
		return c.JSON(http.StatusOK, PricingResponse{Success: true, Plans: plans})
	}
}
