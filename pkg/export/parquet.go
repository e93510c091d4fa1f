package export

import (
	"fmt"
	"os"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/array"
	"github.com/apache/arrow/go/v14/arrow/memory"
	"github.com/apache/arrow/go/v14/parquet"
	"github.com/apache/arrow/go/v14/parquet/compress"
	"github.com/apache/arrow/go/v14/parquet/pqarrow"

	"github.com/charflow/charflow/pkg/scan"
)

// parquetSchema is the columnar layout of an exported report.
var parquetSchema = arrow.NewSchema([]arrow.Field{
	{Name: "path", Type: arrow.BinaryTypes.String},
	{Name: "label", Type: arrow.BinaryTypes.String},
	{Name: "size", Type: arrow.PrimitiveTypes.Int64},
	{Name: "duration_ms", Type: arrow.PrimitiveTypes.Int64},
	{Name: "skipped", Type: arrow.FixedWidthTypes.Boolean},
	{Name: "error", Type: arrow.BinaryTypes.String},
}, nil)

// writeParquet writes the report as a single-row-group Parquet file.
// Writes go to a temp file renamed on success so partial output never
// lands under the final name.
func writeParquet(report *scan.Report, path string) error {
	builder := array.NewRecordBuilder(memory.DefaultAllocator, parquetSchema)
	defer builder.Release()

	paths := builder.Field(0).(*array.StringBuilder)
	labels := builder.Field(1).(*array.StringBuilder)
	sizes := builder.Field(2).(*array.Int64Builder)
	durations := builder.Field(3).(*array.Int64Builder)
	skipped := builder.Field(4).(*array.BooleanBuilder)
	errs := builder.Field(5).(*array.StringBuilder)

	for _, res := range report.Results {
		paths.Append(res.Path)
		labels.Append(res.Label)
		sizes.Append(res.Size)
		durations.Append(res.Duration.Milliseconds())
		skipped.Append(res.Skipped)
		if res.Err != nil {
			errs.Append(res.Err.Error())
		} else {
			errs.Append("")
		}
	}

	record := builder.NewRecord()
	defer record.Release()

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create parquet export: %w", err)
	}

	writerProps := parquet.NewWriterProperties(
		parquet.WithCompression(compress.Codecs.Snappy),
		parquet.WithCreatedBy("charflow"),
	)
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())

	writer, err := pqarrow.NewFileWriter(parquetSchema, f, writerProps, arrowProps)
	if err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("create parquet writer: %w", err)
	}

	if err := writer.Write(record); err != nil {
		writer.Close()
		os.Remove(tmp)
		return fmt.Errorf("write parquet export: %w", err)
	}
	if err := writer.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close parquet export: %w", err)
	}

	return os.Rename(tmp, path)
}
