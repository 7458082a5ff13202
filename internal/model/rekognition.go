package model

import (
	"context"
	"fmt"
	"image"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"github.com/Brownie44l1/image-classify/internal/imaging"
)

// LabelDetector is the part of *rekognition.Client the classifier uses.
type LabelDetector interface {
	DetectLabels(ctx context.Context, params *rekognition.DetectLabelsInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectLabelsOutput, error)
}

// RekognitionClassifier labels images with AWS Rekognition DetectLabels.
type RekognitionClassifier struct {
	client LabelDetector
	topK   int
}

func NewRekognitionClassifier(client LabelDetector, topK int) *RekognitionClassifier {
	if topK <= 0 {
		topK = defaultTopK
	}
	return &RekognitionClassifier{client: client, topK: topK}
}

func (c *RekognitionClassifier) Classify(ctx context.Context, img image.Image) ([]Prediction, error) {
	if c.client == nil {
		return nil, fmt.Errorf("rekognition client is not initialized")
	}

	data, err := imaging.EncodeJPEG(img, 90)
	if err != nil {
		return nil, err
	}

	out, err := c.client.DetectLabels(ctx, &rekognition.DetectLabelsInput{
		Image:     &types.Image{Bytes: data},
		MaxLabels: aws.Int32(int32(c.topK)),
	})
	if err != nil {
		return nil, fmt.Errorf("rekognition DetectLabels: %w", err)
	}

	labels := make([]string, 0, len(out.Labels))
	scores := make([]float32, 0, len(out.Labels))
	for _, l := range out.Labels {
		if l.Name == nil || l.Confidence == nil {
			continue
		}
		labels = append(labels, *l.Name)
		scores = append(scores, *l.Confidence/100)
	}
	log.Printf("Rekognition returned %d labels", len(labels))

	return Rank(scores, labels, c.topK), nil
}
