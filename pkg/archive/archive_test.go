package archive_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/stretchr/testify/require"

	"github.com/invoice-automation/pkg/archive"
)

func TestDirSinkWritesDocument(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	sink := archive.DirSink{Dir: dir}

	loc, err := sink.Store(context.Background(), "invoice_ITCAM0307090530.pdf", []byte("%PDF-"))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "invoice_ITCAM0307090530.pdf"), loc)

	got, err := os.ReadFile(loc)
	require.NoError(t, err)
	require.Equal(t, []byte("%PDF-"), got)
}

func TestDirSinkRejectsPaths(t *testing.T) {
	sink := archive.DirSink{Dir: t.TempDir()}
	for _, name := range []string{"", "../escape.pdf", "a/b.pdf"} {
		_, err := sink.Store(context.Background(), name, nil)
		require.Error(t, err, name)
	}
}

type fakeUploader struct {
	input *s3manager.UploadInput
	body  []byte
	err   error
}

func (f *fakeUploader) Upload(in *s3manager.UploadInput, opts ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error) {
	return f.UploadWithContext(context.Background(), in, opts...)
}

func (f *fakeUploader) UploadWithContext(_ aws.Context, in *s3manager.UploadInput, _ ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.input = in
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.body = body
	return &s3manager.UploadOutput{Location: "https://bucket.s3.amazonaws.com/" + aws.StringValue(in.Key)}, nil
}

func TestS3SinkUploads(t *testing.T) {
	up := &fakeUploader{}
	sink := &archive.S3Sink{Bucket: "invoices", Prefix: "2024/03", Uploader: up}

	loc, err := sink.Store(context.Background(), "invoice_ITCAM0307090530.pdf", []byte("%PDF-"))
	require.NoError(t, err)
	require.Equal(t, "s3://invoices/2024/03/invoice_ITCAM0307090530.pdf", loc)
	require.Equal(t, "invoices", aws.StringValue(up.input.Bucket))
	require.Equal(t, "application/pdf", aws.StringValue(up.input.ContentType))
	require.Equal(t, []byte("%PDF-"), up.body)
}

func TestS3SinkUploadError(t *testing.T) {
	boom := errors.New("access denied")
	sink := &archive.S3Sink{Bucket: "invoices", Uploader: &fakeUploader{err: boom}}

	_, err := sink.Store(context.Background(), "invoice_X.pdf", []byte("x"))
	require.ErrorIs(t, err, boom)
}

func TestNewS3SinkRequiresBucket(t *testing.T) {
	_, err := archive.NewS3Sink("ap-south-1", "", "")
	require.Error(t, err)
}
