package blob

import (
	"context"  // Request scoped storage calls
	"fmt"      // Error wrapping
	"net/http" // Transport
	"time"     // Timeouts, SAS window

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"                   // Client options
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"            // Retry policy
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"                // Pointer helpers
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"           // Blob service client
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"      // Blob headers, SAS options
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror" // Error codes
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/sas"       // SAS permissions
	"github.com/sirupsen/logrus"                                     // Logrus for structured logging
)

// AzureStore keeps report files in Azure Blob Storage using shared key
// credentials; reads go through SAS URLs.
type AzureStore struct {
	client      *azblob.Client
	accountName string
}

// NewAzureStore builds a client for the account. An empty endpoint uses the
// public blob.core.windows.net host.
func NewAzureStore(accountName, accountKey, endpoint string) (*AzureStore, error) {
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://%s.blob.core.windows.net/", accountName)
	}
	cred, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", err)
	}
	opts := &azblob.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry: policy.RetryOptions{
				MaxRetries: -1,               // Negative disables retries
				TryTimeout: 60 * time.Second, // 1 minute per request
			},
			Transport: &http.Client{Timeout: 60 * time.Second},
		},
	}
	client, err := azblob.NewClientWithSharedKeyCredential(endpoint, cred, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return &AzureStore{client: client, accountName: accountName}, nil
}

// Put uploads data as a block blob
func (a *AzureStore) Put(ctx context.Context, container, key string, data []byte, contentType string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if _, err := a.client.CreateContainer(ctx, container, nil); err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return fmt.Errorf("failed to create container %s: %w", container, err)
	}
	_, err := a.client.UploadBuffer(ctx, container, key, data, &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: to.Ptr(contentType)},
	})
	if err != nil {
		return fmt.Errorf("failed to upload blob %s/%s: %w", container, key, err)
	}
	logrus.WithFields(logrus.Fields{
		"container": container, // Target container
		"key":       key,       // Object key
		"size":      len(data), // Bytes written
	}).Debug("Uploaded blob to Azure")
	return nil
}

// SignedURL returns a read-only SAS URL valid from now until now+ttl
func (a *AzureStore) SignedURL(_ context.Context, container, key string, ttl time.Duration) (string, error) {
	if err := ValidateKey(key); err != nil {
		return "", err
	}
	start := time.Now().UTC()
	blobClient := a.client.ServiceClient().NewContainerClient(container).NewBlobClient(key)
	url, err := blobClient.GetSASURL(sas.BlobPermissions{Read: true}, start.Add(ttl), &blob.GetSASURLOptions{StartTime: &start})
	if err != nil {
		return "", fmt.Errorf("failed to sign blob URL: %w", err)
	}
	return url, nil
}

// List enumerates a container's blobs
func (a *AzureStore) List(ctx context.Context, container string) ([]Info, error) {
	var out []Info
	pager := a.client.NewListBlobsFlatPager(container, nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			if bloberror.HasCode(err, bloberror.ContainerNotFound) {
				return nil, nil
			}
			return nil, fmt.Errorf("failed to list container %s: %w", container, err)
		}
		for _, item := range page.Segment.BlobItems {
			if item.Name == nil {
				continue
			}
			info := Info{Key: *item.Name}
			if p := item.Properties; p != nil {
				if p.ContentLength != nil {
					info.Size = *p.ContentLength
				}
				if p.LastModified != nil {
					info.LastModified = *p.LastModified
				}
			}
			out = append(out, info)
		}
	}
	return out, nil
}

// Delete removes one blob
func (a *AzureStore) Delete(ctx context.Context, container, key string) error {
	if _, err := a.client.DeleteBlob(ctx, container, key, nil); err != nil {
		return fmt.Errorf("failed to delete blob %s/%s: %w", container, key, err)
	}
	return nil
}
