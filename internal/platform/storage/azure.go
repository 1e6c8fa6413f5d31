package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

// AzureStore uploads images as block blobs into one container.
type AzureStore struct {
	client    *azblob.Client
	container string
	baseURL   string
}

// NewAzureStore connects with a storage account connection string and makes
// sure the container exists with public blob read access. publicURL may be
// empty, in which case blob URLs are built from the account endpoint.
func NewAzureStore(ctx context.Context, connString, container, publicURL string) (*AzureStore, error) {
	client, err := azblob.NewClientFromConnectionString(connString, nil)
	if err != nil {
		return nil, fmt.Errorf("azblob client: %w", err)
	}
	_, err = client.CreateContainer(ctx, container, &azblob.CreateContainerOptions{
		Access: to.Ptr(azblob.PublicAccessTypeBlob),
	})
	if err != nil {
		var respErr *azcore.ResponseError
		if !errors.As(err, &respErr) || respErr.ErrorCode != string(bloberror.ContainerAlreadyExists) {
			return nil, fmt.Errorf("create container %s: %w", container, err)
		}
		log.Printf("INFO: blob container %s already exists", container)
	}

	if publicURL == "" {
		publicURL = strings.TrimRight(client.URL(), "/") + "/" + container
	}
	return &AzureStore{client: client, container: container, baseURL: strings.TrimRight(publicURL, "/")}, nil
}

func (s *AzureStore) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	_, err := s.client.UploadBuffer(ctx, s.container, key, data, &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: to.Ptr(contentType)},
	})
	if err != nil {
		return "", fmt.Errorf("AzureStore.Put: %w", err)
	}
	return s.baseURL + "/" + key, nil
}
