package web

import (
	"encoding/base64"
	"encoding/json"

	"github.com/gin-gonic/gin"

	"github.com/jimezsa/imsctl/internal/console"
)

const flashCookie = "ims_flash"

// setFlash stores a notice for the next page after a redirect.
func setFlash(c *gin.Context, n console.Notice) {
	data, err := json.Marshal(n)
	if err != nil {
		return
	}
	c.SetCookie(flashCookie, base64.RawURLEncoding.EncodeToString(data), 60, "/", "", false, true)
}

// popFlash returns and clears the pending notice.
func popFlash(c *gin.Context) []console.Notice {
	raw, err := c.Cookie(flashCookie)
	if err != nil || raw == "" {
		return nil
	}
	c.SetCookie(flashCookie, "", -1, "/", "", false, true)

	data, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return nil
	}
	var n console.Notice
	if err := json.Unmarshal(data, &n); err != nil || n.Text == "" {
		return nil
	}
	return []console.Notice{n}
}
