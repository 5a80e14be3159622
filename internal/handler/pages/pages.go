package pages

import (
	"net/http"
	"time"

	"rtm-portal/internal/content"

	"github.com/labstack/echo/v4"
)

const (
	VariantCookie = "hero_variant"
	variantMaxAge = 30 * 24 * time.Hour
)

// variant picks the hero for this visitor. An explicit ?variant= wins and is
// remembered in a cookie so the visitor keeps seeing the same copy.
func variant(c echo.Context, site *content.Site) string {
	if v := c.QueryParam("variant"); site.HasVariant(v) {
		c.SetCookie(&http.Cookie{
			Name:     VariantCookie,
			Value:    v,
			Path:     "/",
			MaxAge:   int(variantMaxAge.Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		return v
	}
	if ck, err := c.Cookie(VariantCookie); err == nil && site.HasVariant(ck.Value) {
		return ck.Value
	}
	return ""
}

func HomeHandler(site *content.Site) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.Render(http.StatusOK, "home", content.Page{
			Title: "Take control of your building",
			Hero:  site.Hero(variant(c, site)),
			Plans: site.Pricing(),
		})
	}
}

func FAQHandler(site *content.Site) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.Render(http.StatusOK, "faq", content.Page{
			Title: "Frequently asked questions",
			Hero:  site.Hero(variant(c, site)),
			FAQs:  site.FAQs(c.QueryParam("category")),
		})
	}
}

func PricingHandler(site *content.Site) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.Render(http.StatusOK, "pricing", content.Page{
			Title: "Pricing",
			Hero:  site.Hero(variant(c, site)),
			Plans: site.Pricing(),
		})
	}
}
