package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	invoicedomain "github.com/smallbiznis/invoicer/internal/invoice/domain"
	"github.com/smallbiznis/invoicer/pkg/db/pagination"
)

func (s *Server) CreateDocument(c *gin.Context) {
	var req invoicedomain.CreateDocumentRequest
	if !bindJSON(c, &req) {
		return
	}

	doc, err := s.documentSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": doc})
}

func (s *Server) ListDocuments(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Type       string `form:"type"`
		Status     string `form:"status"`
		CustomerID string `form:"customer_id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.documentSvc.List(c.Request.Context(), invoicedomain.ListDocumentRequest{
		Type:       strings.TrimSpace(query.Type),
		Status:     strings.TrimSpace(query.Status),
		CustomerID: strings.TrimSpace(query.CustomerID),
		PageToken:  query.PageToken,
		PageSize:   query.PageSize,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetDocumentByID(c *gin.Context) {
	doc, err := s.documentSvc.GetByID(c.Request.Context(), documentID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": doc})
}

func (s *Server) UpdateDocument(c *gin.Context) {
	var req invoicedomain.UpdateDocumentRequest
	if !bindJSON(c, &req) {
		return
	}
	req.ID = documentID(c)

	doc, err := s.documentSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": doc})
}

func (s *Server) DeleteDocument(c *gin.Context) {
	if err := s.documentSvc.Delete(c.Request.Context(), documentID(c)); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) RecalculateDocument(c *gin.Context) {
	s.respondDocument(c, s.documentSvc.Recalculate)
}

func (s *Server) ConvertEstimate(c *gin.Context) {
	doc, err := s.documentSvc.ConvertEstimate(c.Request.Context(), documentID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": doc})
}

func (s *Server) SendDocument(c *gin.Context) {
	s.respondDocument(c, s.documentSvc.MarkSent)
}

func (s *Server) PayDocument(c *gin.Context) {
	s.respondDocument(c, s.documentSvc.MarkPaid)
}

func (s *Server) VoidDocument(c *gin.Context) {
	s.respondDocument(c, s.documentSvc.Void)
}

func (s *Server) RenderDocumentHTML(c *gin.Context) {
	html, err := s.documentSvc.RenderHTML(c.Request.Context(), documentID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

func (s *Server) RenderDocumentPDF(c *gin.Context) {
	id := documentID(c)
	pdf, err := s.documentSvc.RenderPDF(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="document-%s.pdf"`, id))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func (s *Server) PreviewTotals(c *gin.Context) {
	var req invoicedomain.PreviewRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := s.documentSvc.Preview(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) respondDocument(c *gin.Context, fn func(ctx context.Context, id string) (invoicedomain.Document, error)) {
	doc, err := fn(c.Request.Context(), documentID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": doc})
}

func documentID(c *gin.Context) string {
	return strings.TrimSpace(c.Param("id"))
}
