package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roach88/photoduel/internal/battle"
	"github.com/roach88/photoduel/internal/engine"
)

type photoResponse struct {
	ID         string `json:"id"`
	URL        string `json:"url"`
	Rating     int    `json:"rating"`
	Wins       int    `json:"wins"`
	Losses     int    `json:"losses"`
	TotalVotes int    `json:"total_votes"`
}

type sessionResponse struct {
	ID            string          `json:"id"`
	Photos        []photoResponse `json:"photos"`
	SecretKey     string          `json:"secret_key,omitempty"`
	LinkExpiresAt string          `json:"link_expires_at,omitempty"`
}

func toPhotoResponse(p battle.Photo) photoResponse {
	return photoResponse{
		ID: p.ID, URL: p.URL,
		Rating: p.Rating, Wins: p.Wins, Losses: p.Losses, TotalVotes: p.TotalVotes,
	}
}

// toSessionResponse includes the secret key; only owner-scoped handlers
// should use it.
func toSessionResponse(sess battle.Session) sessionResponse {
	photos := make([]photoResponse, len(sess.Photos))
	for i, p := range sess.Photos {
		photos[i] = toPhotoResponse(p)
	}
	return sessionResponse{
		ID:            sess.ID,
		Photos:        photos,
		SecretKey:     sess.SecretKey,
		LinkExpiresAt: sess.LinkExpiresAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func (s *Server) createBattle(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	sess, err := s.engine.CreateBattle(c.Request.Context(), owner)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toSessionResponse(sess))
}

type addPhotoRequest struct {
	URL       string `json:"url"`
	LibraryID string `json:"library_id"`
}

// addPhoto accepts either a multipart upload (form field "file") or a JSON
// body pointing at an already-hosted URL.
func (s *Server) addPhoto(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}

	var params engine.AddPhotoParams
	if file, err := c.FormFile("file"); err == nil {
		if s.blobs == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file uploads are not enabled"})
			return
		}
		f, err := file.Open()
		if err != nil {
			s.writeError(c, err)
			return
		}
		defer f.Close()
		path, err := s.blobs.Store(c.Request.Context(), f)
		if err != nil {
			s.writeError(c, err)
			return
		}
		params.StoragePath = path
		params.URL = "/blobs/" + path
		params.LibraryID = c.PostForm("library_id")
	} else {
		var req addPhotoRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.URL == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
			return
		}
		params.URL = req.URL
		params.LibraryID = req.LibraryID
	}

	photo, err := s.engine.AddPhoto(c.Request.Context(), owner, c.Param("id"), params)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toPhotoResponse(photo))
}

func (s *Server) deletePhoto(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	err := s.engine.DeletePhoto(c.Request.Context(), owner, c.Param("id"), c.Param("photoID"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) nextPair(c *gin.Context) {
	left, right, err := s.engine.NextPair(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"left":  toPhotoResponse(left),
		"right": toPhotoResponse(right),
	})
}

type voteRequest struct {
	WinnerID string `json:"winner_id" binding:"required"`
	LoserID  string `json:"loser_id" binding:"required"`
}

func (s *Server) submitVote(c *gin.Context) {
	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "winner_id and loser_id are required"})
		return
	}
	if err := s.engine.SubmitVote(c.Request.Context(), c.Param("id"), req.WinnerID, req.LoserID); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type mergeRequest struct {
	TargetID string `json:"target_id" binding:"required"`
	MergedID string `json:"merged_id" binding:"required"`
}

func (s *Server) mergePhotos(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	var req mergeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "target_id and merged_id are required"})
		return
	}
	sess, err := s.engine.MergePhotos(c.Request.Context(), owner, c.Param("id"), req.TargetID, req.MergedID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	resp := toSessionResponse(sess)
	resp.SecretKey = ""
	c.JSON(http.StatusOK, resp)
}

func (s *Server) rotateLink(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	sess, err := s.engine.RotateLink(c.Request.Context(), owner, c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSessionResponse(sess))
}

func (s *Server) verify(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	drifts, err := s.engine.Verify(c.Request.Context(), owner, c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	out := make([]gin.H, 0, len(drifts))
	for _, d := range drifts {
		out = append(out, gin.H{
			"photo_id": d.PhotoID,
			"stored":   toPhotoResponse(d.Stored),
			"replayed": toPhotoResponse(d.Replayed),
		})
	}
	c.JSON(http.StatusOK, gin.H{"drifts": out, "clean": len(drifts) == 0})
}

func (s *Server) results(c *gin.Context) {
	key := c.Query("key")
	standings, err := s.engine.Results(c.Request.Context(), c.Param("id"), key)
	if err != nil {
		s.writeError(c, err)
		return
	}
	out := make([]photoResponse, len(standings))
	for i, p := range standings {
		out[i] = toPhotoResponse(p)
	}
	c.JSON(http.StatusOK, gin.H{"session": c.Param("id"), "standings": out})
}
