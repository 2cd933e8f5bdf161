package attendance

import (
	"net/http"

	"fieldtrack.com/fieldtrack/attendance/core"
	common "fieldtrack.com/fieldtrack/attendance/web/common"
	web "fieldtrack.com/fieldtrack/web/common"
	"fieldtrack.com/fieldtrack/web/handlers"
	"fieldtrack.com/fieldtrack/web/middlewares"
	"github.com/gin-gonic/gin"
)

// Record accepts a JSON body or a multipart/url-encoded form.
func (ep *Endpoint) Record(c *gin.Context) {
	in := core.RecordEventInput{UserID: middlewares.UserID(c)}

	if c.ContentType() == gin.MIMEJSON {
		var dto RecordAttendanceDTO
		if err := c.ShouldBindJSON(&dto); err != nil {
			c.JSON(http.StatusBadRequest, web.NewErrorResponse(web.FormatBindingError(err)))
			return
		}
		image, err := handlers.DecodeDataURL(dto.Image)
		if err != nil {
			common.WriteError(c, &core.ValidationError{Field: "image", Message: err.Error()})
			return
		}
		in.Location = dto.location()
		in.Purpose = dto.Purpose
		in.SubPurpose = dto.SubPurpose
		in.Feedback = dto.Feedback
		in.Image = image
	} else {
		image, err := handlers.ReadImage(c)
		if err != nil {
			common.WriteError(c, &core.ValidationError{Field: "image", Message: err.Error()})
			return
		}
		in.Location = c.PostForm("location")
		in.Purpose = c.PostForm("purpose")
		in.SubPurpose = c.PostForm("subPurpose")
		in.Feedback = c.PostForm("feedback")
		in.Image = image
	}

	event, err := ep.agg.RecordEvent(c.Request.Context(), in)
	if err != nil {
		common.WriteError(c, err)
		return
	}

	c.JSON(http.StatusCreated, web.NewSuccessResponse(event))
}
