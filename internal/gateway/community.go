package gateway

import (
	"context"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/internal/content"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/session"
)

// ListProducts returns the products visible to the session.
func (c *Client) ListProducts(ctx context.Context, sess session.Session) ([]content.Product, error) {
	body, err := c.send(ctx, sess, "list_products", resty.MethodGet, "/products", nil)
	if err != nil {
		return nil, err
	}
	return decodeList[content.Product]("product list", body)
}

// FetchProduct returns one product.
func (c *Client) FetchProduct(ctx context.Context, sess session.Session, productID string) (content.Product, error) {
	path, err := entityPath("product", "/products/%s", productID)
	if err != nil {
		return content.Product{}, err
	}

	body, err := c.send(ctx, sess, "fetch_product", resty.MethodGet, path, nil)
	if err != nil {
		return content.Product{}, err
	}
	return decodeOne[content.Product]("product", body)
}

// ListPosts returns the community posts of a product.
func (c *Client) ListPosts(ctx context.Context, sess session.Session, productID string) ([]content.Post, error) {
	path, err := entityPath("product", "/posts/product/%s", productID)
	if err != nil {
		return nil, err
	}

	body, err := c.send(ctx, sess, "list_posts", resty.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[content.Post]("post list", body)
}

// CreatePost publishes a community post.
func (c *Client) CreatePost(ctx context.Context, sess session.Session, productID string, form content.PostForm) (content.Post, error) {
	if _, err := entityPath("product", "%s", productID); err != nil {
		return content.Post{}, err
	}

	body, err := c.send(ctx, sess, "create_post", resty.MethodPost, "/posts", func(r *resty.Request) {
		r.SetMultipartFormData(map[string]string{
			"title":     strings.TrimSpace(form.Title),
			"content":   strings.TrimSpace(form.Content),
			"productId": strings.TrimSpace(productID),
		})
		attach(r, "image", form.Image)
	})
	if err != nil {
		return content.Post{}, err
	}
	return decodeOne[content.Post]("post", body)
}

// DeletePost removes a community post.
func (c *Client) DeletePost(ctx context.Context, sess session.Session, postID string) error {
	path, err := entityPath("post", "/posts/%s", postID)
	if err != nil {
		return err
	}
	_, err = c.send(ctx, sess, "delete_post", resty.MethodDelete, path, nil)
	return err
}

// ListPrivateGroups returns the private groups linked to a product.
func (c *Client) ListPrivateGroups(ctx context.Context, sess session.Session, productID string) ([]content.PrivateGroup, error) {
	path, err := entityPath("product", "/private-groups/product/%s", productID)
	if err != nil {
		return nil, err
	}

	body, err := c.send(ctx, sess, "list_groups", resty.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[content.PrivateGroup]("private group list", body)
}

type privateGroupPayload struct {
	ProductID   string                `json:"productId"`
	Name        string                `json:"name"`
	Platform    content.GroupPlatform `json:"platform"`
	InviteURL   string                `json:"inviteUrl"`
	Description string                `json:"description,omitempty"`
}

// CreatePrivateGroup links a chat group to a product.
func (c *Client) CreatePrivateGroup(ctx context.Context, sess session.Session, productID string, form content.PrivateGroupForm) (content.PrivateGroup, error) {
	if _, err := entityPath("product", "%s", productID); err != nil {
		return content.PrivateGroup{}, err
	}

	payload := privateGroupPayload{
		ProductID:   strings.TrimSpace(productID),
		Name:        strings.TrimSpace(form.Name),
		Platform:    form.Platform,
		InviteURL:   strings.TrimSpace(form.InviteURL),
		Description: strings.TrimSpace(form.Description),
	}

	body, err := c.send(ctx, sess, "create_group", resty.MethodPost, "/private-groups", func(r *resty.Request) {
		r.SetHeader("Content-Type", "application/json").SetBody(payload)
	})
	if err != nil {
		return content.PrivateGroup{}, err
	}
	return decodeOne[content.PrivateGroup]("private group", body)
}

// DeletePrivateGroup unlinks a chat group.
func (c *Client) DeletePrivateGroup(ctx context.Context, sess session.Session, groupID string) error {
	path, err := entityPath("group", "/private-groups/%s", groupID)
	if err != nil {
		return err
	}
	_, err = c.send(ctx, sess, "delete_group", resty.MethodDelete, path, nil)
	return err
}
