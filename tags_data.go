package exif

// tagsYaml is the tag taxonomy: every known tag with its home IFD, canonical
// data format, and unit count (absent means variable).
const tagsYaml = `
IFD0:
- id: 0x000b
  name: ProcessingSoftware
  type_name: ASCII
- id: 0x0100
  name: ImageWidth
  type_name: LONG
  count: 1
- id: 0x0101
  name: ImageLength
  type_name: LONG
  count: 1
- id: 0x0102
  name: BitsPerSample
  type_name: SHORT
  count: 3
- id: 0x0103
  name: Compression
  type_name: SHORT
  count: 1
- id: 0x0106
  name: PhotometricInterpretation
  type_name: SHORT
  count: 1
- id: 0x010e
  name: ImageDescription
  type_name: ASCII
- id: 0x010f
  name: Make
  type_name: ASCII
- id: 0x0110
  name: Model
  type_name: ASCII
- id: 0x0111
  name: StripOffsets
  type_name: LONG
- id: 0x0112
  name: Orientation
  type_name: SHORT
  count: 1
- id: 0x0115
  name: SamplesPerPixel
  type_name: SHORT
  count: 1
- id: 0x0116
  name: RowsPerStrip
  type_name: LONG
  count: 1
- id: 0x0117
  name: StripByteCounts
  type_name: LONG
- id: 0x011a
  name: XResolution
  type_name: RATIONAL
  count: 1
- id: 0x011b
  name: YResolution
  type_name: RATIONAL
  count: 1
- id: 0x011c
  name: PlanarConfiguration
  type_name: SHORT
  count: 1
- id: 0x0128
  name: ResolutionUnit
  type_name: SHORT
  count: 1
- id: 0x012d
  name: TransferFunction
  type_name: SHORT
  count: 768
- id: 0x0131
  name: Software
  type_name: ASCII
- id: 0x0132
  name: DateTime
  type_name: ASCII
  count: 20
- id: 0x013b
  name: Artist
  type_name: ASCII
- id: 0x013e
  name: WhitePoint
  type_name: RATIONAL
  count: 2
- id: 0x013f
  name: PrimaryChromaticities
  type_name: RATIONAL
  count: 6
- id: 0x0211
  name: YCbCrCoefficients
  type_name: RATIONAL
  count: 3
- id: 0x0212
  name: YCbCrSubSampling
  type_name: SHORT
  count: 2
- id: 0x0213
  name: YCbCrPositioning
  type_name: SHORT
  count: 1
- id: 0x0214
  name: ReferenceBlackWhite
  type_name: RATIONAL
  count: 6
- id: 0x8298
  name: Copyright
  type_name: ASCII
Exif:
- id: 0x829a
  name: ExposureTime
  type_name: RATIONAL
  count: 1
- id: 0x829d
  name: FNumber
  type_name: RATIONAL
  count: 1
- id: 0x8822
  name: ExposureProgram
  type_name: SHORT
  count: 1
- id: 0x8824
  name: SpectralSensitivity
  type_name: ASCII
- id: 0x8827
  name: ISOSpeedRatings
  type_name: SHORT
- id: 0x8830
  name: SensitivityType
  type_name: SHORT
  count: 1
- id: 0x9000
  name: ExifVersion
  type_name: UNDEFINED
  count: 4
- id: 0x9003
  name: DateTimeOriginal
  type_name: ASCII
  count: 20
- id: 0x9004
  name: DateTimeDigitized
  type_name: ASCII
  count: 20
- id: 0x9101
  name: ComponentsConfiguration
  type_name: UNDEFINED
  count: 4
- id: 0x9102
  name: CompressedBitsPerPixel
  type_name: RATIONAL
  count: 1
- id: 0x9201
  name: ShutterSpeedValue
  type_name: SRATIONAL
  count: 1
- id: 0x9202
  name: ApertureValue
  type_name: RATIONAL
  count: 1
- id: 0x9203
  name: BrightnessValue
  type_name: SRATIONAL
  count: 1
- id: 0x9204
  name: ExposureBiasValue
  type_name: SRATIONAL
  count: 1
- id: 0x9205
  name: MaxApertureValue
  type_name: RATIONAL
  count: 1
- id: 0x9206
  name: SubjectDistance
  type_name: RATIONAL
  count: 1
- id: 0x9207
  name: MeteringMode
  type_name: SHORT
  count: 1
- id: 0x9208
  name: LightSource
  type_name: SHORT
  count: 1
- id: 0x9209
  name: Flash
  type_name: SHORT
  count: 1
- id: 0x920a
  name: FocalLength
  type_name: RATIONAL
  count: 1
- id: 0x9214
  name: SubjectArea
  type_name: SHORT
- id: 0x9286
  name: UserComment
  type_name: UNDEFINED
- id: 0x9290
  name: SubSecTime
  type_name: ASCII
- id: 0x9291
  name: SubSecTimeOriginal
  type_name: ASCII
- id: 0x9292
  name: SubSecTimeDigitized
  type_name: ASCII
- id: 0xa000
  name: FlashpixVersion
  type_name: UNDEFINED
  count: 4
- id: 0xa001
  name: ColorSpace
  type_name: SHORT
  count: 1
- id: 0xa002
  name: PixelXDimension
  type_name: LONG
  count: 1
- id: 0xa003
  name: PixelYDimension
  type_name: LONG
  count: 1
- id: 0xa004
  name: RelatedSoundFile
  type_name: ASCII
  count: 13
- id: 0xa20b
  name: FlashEnergy
  type_name: RATIONAL
  count: 1
- id: 0xa20e
  name: FocalPlaneXResolution
  type_name: RATIONAL
  count: 1
- id: 0xa20f
  name: FocalPlaneYResolution
  type_name: RATIONAL
  count: 1
- id: 0xa210
  name: FocalPlaneResolutionUnit
  type_name: SHORT
  count: 1
- id: 0xa214
  name: SubjectLocation
  type_name: SHORT
  count: 2
- id: 0xa215
  name: ExposureIndex
  type_name: RATIONAL
  count: 1
- id: 0xa217
  name: SensingMethod
  type_name: SHORT
  count: 1
- id: 0xa300
  name: FileSource
  type_name: UNDEFINED
  count: 1
- id: 0xa301
  name: SceneType
  type_name: UNDEFINED
  count: 1
- id: 0xa302
  name: CFAPattern
  type_name: UNDEFINED
- id: 0xa401
  name: CustomRendered
  type_name: SHORT
  count: 1
- id: 0xa402
  name: ExposureMode
  type_name: SHORT
  count: 1
- id: 0xa403
  name: WhiteBalance
  type_name: SHORT
  count: 1
- id: 0xa404
  name: DigitalZoomRatio
  type_name: RATIONAL
  count: 1
- id: 0xa405
  name: FocalLengthIn35mmFilm
  type_name: SHORT
  count: 1
- id: 0xa406
  name: SceneCaptureType
  type_name: SHORT
  count: 1
- id: 0xa407
  name: GainControl
  type_name: SHORT
  count: 1
- id: 0xa408
  name: Contrast
  type_name: SHORT
  count: 1
- id: 0xa409
  name: Saturation
  type_name: SHORT
  count: 1
- id: 0xa40a
  name: Sharpness
  type_name: SHORT
  count: 1
- id: 0xa40c
  name: SubjectDistanceRange
  type_name: SHORT
  count: 1
- id: 0xa420
  name: ImageUniqueID
  type_name: ASCII
  count: 33
- id: 0xa430
  name: OwnerName
  type_name: ASCII
- id: 0xa431
  name: BodySerialNumber
  type_name: ASCII
- id: 0xa432
  name: LensSpecification
  type_name: RATIONAL
  count: 4
- id: 0xa433
  name: LensMake
  type_name: ASCII
- id: 0xa434
  name: LensModel
  type_name: ASCII
- id: 0xa435
  name: LensSerialNumber
  type_name: ASCII
GPSInfo:
- id: 0x0000
  name: GPSVersionID
  type_name: BYTE
  count: 4
- id: 0x0001
  name: GPSLatitudeRef
  type_name: ASCII
  count: 2
- id: 0x0002
  name: GPSLatitude
  type_name: RATIONAL
  count: 3
- id: 0x0003
  name: GPSLongitudeRef
  type_name: ASCII
  count: 2
- id: 0x0004
  name: GPSLongitude
  type_name: RATIONAL
  count: 3
- id: 0x0005
  name: GPSAltitudeRef
  type_name: BYTE
  count: 1
- id: 0x0006
  name: GPSAltitude
  type_name: RATIONAL
  count: 1
- id: 0x0007
  name: GPSTimeStamp
  type_name: RATIONAL
  count: 3
- id: 0x0008
  name: GPSSatellites
  type_name: ASCII
- id: 0x0009
  name: GPSStatus
  type_name: ASCII
  count: 2
- id: 0x000a
  name: GPSMeasureMode
  type_name: ASCII
  count: 2
- id: 0x000b
  name: GPSDOP
  type_name: RATIONAL
  count: 1
- id: 0x000c
  name: GPSSpeedRef
  type_name: ASCII
  count: 2
- id: 0x000d
  name: GPSSpeed
  type_name: RATIONAL
  count: 1
- id: 0x000e
  name: GPSTrackRef
  type_name: ASCII
  count: 2
- id: 0x000f
  name: GPSTrack
  type_name: RATIONAL
  count: 1
- id: 0x0010
  name: GPSImgDirectionRef
  type_name: ASCII
  count: 2
- id: 0x0011
  name: GPSImgDirection
  type_name: RATIONAL
  count: 1
- id: 0x0012
  name: GPSMapDatum
  type_name: ASCII
- id: 0x0013
  name: GPSDestLatitudeRef
  type_name: ASCII
  count: 2
- id: 0x0014
  name: GPSDestLatitude
  type_name: RATIONAL
  count: 3
- id: 0x0015
  name: GPSDestLongitudeRef
  type_name: ASCII
  count: 2
- id: 0x0016
  name: GPSDestLongitude
  type_name: RATIONAL
  count: 3
- id: 0x0017
  name: GPSDestBearingRef
  type_name: ASCII
  count: 2
- id: 0x0018
  name: GPSDestBearing
  type_name: RATIONAL
  count: 1
- id: 0x0019
  name: GPSDestDistanceRef
  type_name: ASCII
  count: 2
- id: 0x001a
  name: GPSDestDistance
  type_name: RATIONAL
  count: 1
- id: 0x001b
  name: GPSProcessingMethod
  type_name: UNDEFINED
- id: 0x001c
  name: GPSAreaInformation
  type_name: UNDEFINED
- id: 0x001d
  name: GPSDateStamp
  type_name: ASCII
  count: 11
- id: 0x001e
  name: GPSDifferential
  type_name: SHORT
  count: 1
Iop:
- id: 0x0001
  name: InteroperabilityIndex
  type_name: ASCII
- id: 0x0002
  name: InteroperabilityVersion
  type_name: UNDEFINED
  count: 4
- id: 0x1000
  name: RelatedImageFileFormat
  type_name: ASCII
- id: 0x1001
  name: RelatedImageWidth
  type_name: LONG
  count: 1
- id: 0x1002
  name: RelatedImageLength
  type_name: LONG
  count: 1
IFD1:
- id: 0x0100
  name: ImageWidth
  type_name: LONG
  count: 1
- id: 0x0101
  name: ImageLength
  type_name: LONG
  count: 1
- id: 0x0103
  name: Compression
  type_name: SHORT
  count: 1
- id: 0x011a
  name: XResolution
  type_name: RATIONAL
  count: 1
- id: 0x011b
  name: YResolution
  type_name: RATIONAL
  count: 1
- id: 0x0128
  name: ResolutionUnit
  type_name: SHORT
  count: 1
- id: 0x0201
  name: JPEGInterchangeFormat
  type_name: LONG
  count: 1
- id: 0x0202
  name: JPEGInterchangeFormatLength
  type_name: LONG
  count: 1
- id: 0x0213
  name: YCbCrPositioning
  type_name: SHORT
  count: 1
`
