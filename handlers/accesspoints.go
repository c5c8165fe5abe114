package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AccessPoint is one selectable entry or exit point for an activity.
type AccessPoint struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// accessPointsByActivity is the static entry/exit catalogue keyed by
// activity id, served to the Confirm Details step.
var accessPointsByActivity = map[string][]AccessPoint{
	"66": {
		{ID: "rubble-creek", Name: "Rubble Creek"},
		{ID: "cheakamus", Name: "Cheakamus"},
		{ID: "diamond-head", Name: "Diamond Head"},
		{ID: "singing-creek", Name: "Singing Creek"},
	},
	"67": {
		{ID: "paradise-meadows", Name: "Paradise Meadows"},
		{ID: "bedwell-lake", Name: "Bedwell Lake"},
	},
}

// GetAccessPoints serves the entry/exit point choices for an activity. An
// unknown activity gets an empty list, not an error.
func GetAccessPoints() gin.HandlerFunc {
	return func(c *gin.Context) {
		points := accessPointsByActivity[c.Param("activityId")]
		if points == nil {
			points = []AccessPoint{}
		}
		c.JSON(http.StatusOK, gin.H{"accessPoints": points})
	}
}
